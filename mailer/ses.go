// Package mailer sends notification emails through AWS SES. It is a
// fire-and-forget collaborator: callers log failures and move on.
package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

type Mailer struct {
	client *ses.Client
	sender string
	log    *zap.Logger
}

func New(ctx context.Context, region, sender string, log *zap.Logger) (*Mailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &Mailer{
		client: ses.NewFromConfig(cfg),
		sender: sender,
		log:    log,
	}, nil
}

// Send renders the template kind into a plain-text email and sends it.
func (m *Mailer) Send(ctx context.Context, to, templateKind string, data map[string]interface{}) error {
	subject, body := render(templateKind, data)

	input := &ses.SendEmailInput{
		Source: aws.String(m.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	}

	_, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return err
	}
	m.log.Debug("email sent", zap.String("template", templateKind))
	return nil
}

// render maps a template kind to a plain-text subject and body. Kinds
// line up with what the dispatcher emits.
func render(templateKind string, data map[string]interface{}) (string, string) {
	switch templateKind {
	case "verification_approved":
		return "Your account has been approved",
			"Your alumni account was approved by your institution. You can now connect with other members."
	case "verification_rejected":
		return "Your account was not approved",
			"Your institution reviewed your registration and did not approve it. Contact your institution for details."
	case "follow_request":
		return "New follow request",
			fmt.Sprintf("You have a new follow request (request #%v).", data["request_id"])
	case "follow_accepted":
		return "Follow request accepted",
			fmt.Sprintf("Your follow request #%v was accepted.", data["request_id"])
	case "follow_rejected":
		return "Follow request declined",
			fmt.Sprintf("Your follow request #%v was declined.", data["request_id"])
	default:
		return "Notification from AlumConnect", "You have a new notification."
	}
}
