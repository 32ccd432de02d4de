package notifications

import (
	"context"
	"errors"

	"tastebook/backend/pkg/config"
	tblog "tastebook/backend/pkg/log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// EmailNotifier sends a message to a single recipient.
type EmailNotifier interface {
	Send(ctx context.Context, to, subject, bodyHTML, bodyText string) error
}

// DefaultEmailNotifier is the notifier used by the application.
var DefaultEmailNotifier EmailNotifier

// SESEmailNotifier implements EmailNotifier using AWS SESv2.
type SESEmailNotifier struct {
	client *sesv2.Client
	sender string
}

// LogEmailNotifier logs messages instead of sending them. Used in
// development when SES is not configured.
type LogEmailNotifier struct{}

func (LogEmailNotifier) Send(ctx context.Context, to, subject, bodyHTML, bodyText string) error {
	tblog.L.Info("--- SIMULATING EMAIL SEND ---",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", bodyText))
	return nil
}

// InitEmailService selects the notifier. Falls back to the log notifier
// when AWS SES is not configured.
func InitEmailService() {
	log := tblog.L.Named("InitEmailService")

	awsRegion := config.Cfg.AWSRegion
	senderEmail := config.Cfg.AWSSESEmailSender

	if awsRegion == "" || senderEmail == "" {
		log.Warn("AWS SES not configured (missing AWS_REGION or AWS_SES_EMAIL_SENDER). Emails will be logged, not sent.")
		DefaultEmailNotifier = LogEmailNotifier{}
		return
	}

	cfg, err := awsConfig.LoadDefaultConfig(context.TODO(), awsConfig.WithRegion(awsRegion))
	if err != nil {
		log.Error("Failed to load AWS SDK config for SES, emails will be logged instead", zap.Error(err))
		DefaultEmailNotifier = LogEmailNotifier{}
		return
	}

	DefaultEmailNotifier = &SESEmailNotifier{
		client: sesv2.NewFromConfig(cfg),
		sender: senderEmail,
	}
	log.Info("AWS SES email service initialized", zap.String("sender", senderEmail), zap.String("region", awsRegion))
}

func (s *SESEmailNotifier) Send(ctx context.Context, to, subject, bodyHTML, bodyText string) error {
	if s.client == nil {
		return errors.New("SES client not initialized")
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: &s.sender,
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(bodyHTML),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(bodyText),
						Charset: aws.String("UTF-8"),
					},
				},
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		tblog.L.Error("Failed to send email via SES", zap.Error(err), zap.String("recipient", to))
		return err
	}

	tblog.L.Info("Email sent", zap.String("recipient", to), zap.String("subject", subject))
	return nil
}
