package report

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/reviewloop/solicitor/internal/awsx"
)

// Mailer sends the rendered report over SES.
type Mailer struct {
	ses  awsx.SESAPI
	from string
	to   string
}

// NewMailer returns a Mailer bound to a sender and recipient.
func NewMailer(ses awsx.SESAPI, from, to string) *Mailer {
	return &Mailer{ses: ses, from: from, to: to}
}

// Send delivers one HTML email.
func (m *Mailer) Send(ctx context.Context, subject, htmlBody string) error {
	_, err := m.ses.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &m.from,
		Destination: &sestypes.Destination{
			ToAddresses: []string{m.to},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{
					Data:    &subject,
					Charset: sdkaws.String("utf-8"),
				},
				Body: &sestypes.Body{
					Html: &sestypes.Content{
						Data:    &htmlBody,
						Charset: sdkaws.String("utf-8"),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send report email: %w", err)
	}
	return nil
}
