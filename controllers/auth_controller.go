package controllers

import (
	"net/http"

	"github.com/alum-connect/api-go/config"
	"github.com/alum-connect/api-go/models"
	"github.com/alum-connect/api-go/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAuthController(db *gorm.DB, cfg *config.Config) *AuthController {
	return &AuthController{DB: db, Cfg: cfg}
}

// Register creates an account in pending status. Verification by an
// institution reviewer happens separately.
func (ac *AuthController) Register(c *gin.Context) {
	var input struct {
		Email          string `json:"email" binding:"required,email"`
		Password       string `json:"password" binding:"required,min=6"`
		FirstName      string `json:"firstName" binding:"required"`
		LastName       string `json:"lastName" binding:"required"`
		Role           string `json:"role" binding:"required,oneof=alumni student institution_admin"`
		College        string `json:"college" binding:"required"`
		Department     string `json:"department"`
		RollNumber     string `json:"rollNumber"`
		GraduationYear int    `json:"graduationYear"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password", "success": false})
		return
	}

	user := models.User{
		Email:          input.Email,
		Password:       string(hashedPassword),
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Role:           input.Role,
		Status:         models.StatusPending,
		College:        input.College,
		Department:     input.Department,
		RollNumber:     input.RollNumber,
		GraduationYear: input.GraduationYear,
	}

	if err := ac.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered", "success": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Registration received, awaiting institution verification",
		"user": gin.H{
			"id":      user.ID,
			"email":   user.Email,
			"status":  user.Status,
			"college": user.College,
		},
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(&user, ac.Cfg.JWTSecret, ac.Cfg.JWTTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token_type":   "Bearer",
		"access_token": token,
		"user": gin.H{
			"id":     user.ID,
			"email":  user.Email,
			"role":   user.Role,
			"status": user.Status,
		},
		"success": true,
	})
}

// RegisterEmailCheck reports whether an email is still available.
func (ac *AuthController) RegisterEmailCheck(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Email available for registration",
			"available": true,
		})
		return
	}

	c.JSON(http.StatusConflict, gin.H{
		"success":   false,
		"error":     "Email already registered",
		"available": false,
	})
}

func (ac *AuthController) GetProfile(c *gin.Context) {
	claims := utils.GetUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user models.User
	if err := ac.DB.First(&user, claims.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found", "success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
