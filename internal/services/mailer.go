package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// ErrMailNotConfigured is returned when no sender address is set up.
var ErrMailNotConfigured = errors.New("mail delivery is not configured")

// Message is a single outbound e-mail.
type Message struct {
	To       []string
	CC       []string
	ReplyTo  string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer delivers Messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESMailer sends through Amazon SES v2.
type SESMailer struct {
	client    sesAPI
	fromEmail string
	fromName  string
	logger    *zap.Logger
}

// NewSESMailer builds the SES client. Static credentials are used when both keys
// are given, otherwise the default AWS credential chain applies.
func NewSESMailer(ctx context.Context, region, accessKey, secretKey, fromEmail, fromName string, logger *zap.Logger) (*SESMailer, error) {
	cfg, err := loadAWSConfig(ctx, region, accessKey, secretKey)
	if err != nil {
		return nil, err
	}
	return &SESMailer{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		logger:    logger,
	}, nil
}

func loadAWSConfig(ctx context.Context, region, accessKey, secretKey string) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	return cfg, nil
}

// Send returns the SES message id.
func (m *SESMailer) Send(ctx context.Context, msg Message) (string, error) {
	if m.fromEmail == "" {
		return "", ErrMailNotConfigured
	}
	if len(msg.To) == 0 {
		return "", errors.New("message has no recipients")
	}

	from := m.fromEmail
	if m.fromName != "" {
		from = fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail)
	}

	body := &types.Body{}
	if msg.HTMLBody != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTMLBody), Charset: aws.String("UTF-8")}
	}
	if msg.TextBody != "" {
		body.Text = &types.Content{Data: aws.String(msg.TextBody), Charset: aws.String("UTF-8")}
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: msg.To, CcAddresses: msg.CC},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	out, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return "", fmt.Errorf("ses send: %w", err)
	}

	messageID := aws.ToString(out.MessageId)
	m.logger.Info("mail sent",
		zap.String("to", redactedRecipient(msg)),
		zap.Int("cc", len(msg.CC)),
		zap.String("messageId", messageID),
	)
	return messageID, nil
}

// LogMailer stands in when SES is not configured: it only logs what would be sent.
type LogMailer struct {
	Logger *zap.Logger
}

func (m LogMailer) Send(_ context.Context, msg Message) (string, error) {
	m.Logger.Info("mail delivery disabled, dropping message",
		zap.String("to", redactedRecipient(msg)),
		zap.String("subject", msg.Subject),
	)
	return "", nil
}
