package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/yukikurage/community-workspace-api/internal/logging"
	"go.uber.org/zap"
)

var ErrNoRecipients = errors.New("email has no recipients")

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

type Email struct {
	To          []mail.Address
	Subject     string
	TextContent string
	HTMLContent string
}

// Mailer delivers transactional email
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// SendGridMailer sends email through the SendGrid v3 API
type SendGridMailer struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	api        func(rest.Request) (*rest.Response, error)
}

func NewSendGridMailer(key, fromName, fromEmail string) *SendGridMailer {
	return &SendGridMailer{
		key:        key,
		from:       sgmail.NewEmail(fromName, fromEmail),
		subjPrefix: "[" + fromName + "] ",
		api:        sendgrid.API,
	}
}

func (m *SendGridMailer) prepare(msg Email) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = m.subjPrefix + msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail(to.Name, to.Address))
	}

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)

	v3.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	if msg.HTMLContent != "" {
		v3.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	return v3
}

func (m *SendGridMailer) Send(ctx context.Context, msg Email) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	req := sendgrid.GetRequest(m.key, sendGridEndpoint, sendGridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(msg))

	res, err := m.api(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid rejected email: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// LogMailer writes emails to the log instead of sending them
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logging.OrNop(logger)}
}

func (m *LogMailer) Send(ctx context.Context, msg Email) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	to := make([]string, len(msg.To))
	for i, addr := range msg.To {
		to[i] = addr.Address
	}
	m.logger.Info("email not sent, no mail provider configured",
		zap.Strings("to", to),
		zap.String("subject", msg.Subject),
	)
	return nil
}
