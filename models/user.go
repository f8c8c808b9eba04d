package models

import (
	"time"
)

// Moderation statuses for an account. Status only ever moves from
// pending to one of the two terminal states.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Account roles.
const (
	RoleAlumni           = "alumni"
	RoleStudent          = "student"
	RoleInstitutionAdmin = "institution_admin"
)

type User struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `gorm:"unique;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"` // Don't expose password in JSON
	Role           string    `gorm:"not null" json:"role"`
	Status         string    `gorm:"not null;default:'pending';index" json:"status"`
	College        string    `gorm:"not null;index" json:"college"`
	Department     string    `json:"department"`
	RollNumber     string    `json:"roll_number"`
	GraduationYear int       `json:"graduation_year"`
}

// IsApproved reports whether the account passed institution review.
func (u *User) IsApproved() bool {
	return u.Status == StatusApproved
}
