package mailer

import (
	"context"

	"github.com/librisapp/libris/pkg/config"
	"github.com/matcornic/hermes/v2"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/wneessen/go-mail"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers rendered messages.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

type Mailer struct {
	sender Sender
	hermes hermes.Hermes
}

// New returns a mailer that delivers over SMTP, or one that only logs when
// no SMTP host is configured.
func New(cfg *config.Config) (*Mailer, error) {
	var sender Sender
	if cfg.SMTPHost == "" {
		sender = &LogSender{}
	} else {
		s, err := NewSMTPSender(cfg)
		if err != nil {
			return nil, err
		}
		sender = s
	}
	return NewWithSender(cfg, sender), nil
}

func NewWithSender(cfg *config.Config, sender Sender) *Mailer {
	return &Mailer{
		sender: sender,
		hermes: hermes.Hermes{
			Product: hermes.Product{
				Name: "Libris",
				Link: cfg.AppURL,
			},
		},
	}
}

func (m *Mailer) SendEmailVerification(ctx context.Context, to, username, link string) error {
	email := hermes.Email{
		Body: hermes.Body{
			Name:   username,
			Intros: []string{"Welcome to Libris! We're very excited to have you on board."},
			Actions: []hermes.Action{
				{
					Instructions: "To verify your email please click on the following button:",
					Button: hermes.Button{
						Color: "#22BC66",
						Text:  "Verify your email",
						Link:  link,
					},
				},
			},
			Outros: []string{"Need help, or have questions? Just reply to this email, we'd love to help."},
		},
	}

	html, err := m.hermes.GenerateHTML(email)
	if err != nil {
		return errors.WithStack(err)
	}
	text, err := m.hermes.GeneratePlainText(email)
	if err != nil {
		return errors.WithStack(err)
	}

	return m.sender.Send(ctx, &Message{
		To:      to,
		Subject: "Please verify your email",
		Text:    text,
		HTML:    html,
	})
}

type SMTPSender struct {
	client *mail.Client
	from   string
}

func NewSMTPSender(cfg *config.Config) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}
	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &SMTPSender{client, cfg.MailFrom}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return errors.WithStack(err)
	}
	if err := m.To(msg.To); err != nil {
		return errors.WithStack(err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)

	return errors.Wrap(s.client.DialAndSendWithContext(ctx, m), "failed to send email")
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct{}

func (*LogSender) Send(ctx context.Context, msg *Message) error {
	logger.FromContext(ctx).Info("email not sent, no smtp host configured", logger.Data{
		"to":      msg.To,
		"subject": msg.Subject,
		"body":    msg.Text,
	})
	return nil
}
