package auth

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// Mail templates.
const (
	MailVerify        = "verify"
	MailResetPassword = "resetpassword"
)

var mailSubjects = map[string]string{
	MailVerify:        "Verify your email",
	MailResetPassword: "Set your password",
}

var mailTemplates = template.Must(template.New("mail").Parse(`
{{define "verify"}}<!doctype html>
<html>
  <body>
    <h3>You're almost there!</h3>
    <p>Hi {{.Name}}<br>Kindly verify you own this email address by clicking the link below</p>
    <p><a href="{{.Link}}">{{.Link}}</a></p>
    <br/>
    <p><i>You're receiving this mail because you registered on our site with this email</i></p>
  </body>
</html>{{end}}
{{define "resetpassword"}}<!doctype html>
<html>
  <body>
    <h3>Confirm it's you!</h3>
    <p>Hi {{.Name}}<br>Someone (hopefully you) has requested a password reset on your account.
    Kindly verify you initialized this request by clicking the link below</p>
    <p><a href="{{.Link}}">{{.Link}}</a></p>
    <br/>
    <p>Please take some time to secure your account if you did not make this request.</p>
  </body>
</html>{{end}}
`))

// Mail is one templated message.
type Mail struct {
	To       string
	Name     string
	Template string
	Link     string
}

// Mailer sends templated mail.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// EmailConfig holds SMTP configuration.
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
}

// EmailService sends mail through an SMTP relay.
type EmailService struct {
	cfg    EmailConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	logger zerolog.Logger
}

// NewEmailService creates an email service.
func NewEmailService(cfg EmailConfig, logger zerolog.Logger) *EmailService {
	return &EmailService{
		cfg:    cfg,
		send:   smtp.SendMail,
		logger: logger.With().Str("component", "email").Logger(),
	}
}

// Send renders the template and delivers it.
func (e *EmailService) Send(ctx context.Context, m Mail) error {
	if e.cfg.SMTPHost == "" || e.cfg.SMTPPort == 0 {
		return fmt.Errorf("email service not configured")
	}
	msg, err := e.render(m)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", e.cfg.SMTPHost, e.cfg.SMTPPort)
	var auth smtp.Auth
	if e.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", e.cfg.SMTPUsername, e.cfg.SMTPPassword, e.cfg.SMTPHost)
	}

	if err := e.send(addr, auth, e.cfg.FromEmail, []string{m.To}, msg); err != nil {
		e.logger.Error().Err(err).Str("to", m.To).Str("template", m.Template).Msg("failed to send email")
		return fmt.Errorf("send email: %w", err)
	}

	e.logger.Info().Str("to", m.To).Str("template", m.Template).Msg("email sent")
	return nil
}

func (e *EmailService) render(m Mail) ([]byte, error) {
	subject, ok := mailSubjects[m.Template]
	if !ok {
		return nil, fmt.Errorf("unknown mail template %q", m.Template)
	}

	var body bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&body, m.Template, m); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", e.cfg.FromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", m.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

// SecureLink builds <origin>/<mailtype>?email=..&token=..
func SecureLink(origin, mailtype, email, token string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	return strings.TrimRight(origin, "/") + "/" + mailtype + "?" + q.Encode()
}
