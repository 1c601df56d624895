package mailer

import (
	"context"

	"github.com/Tomas-vilte/RepoVigia/internal/config"
	domainerrors "github.com/Tomas-vilte/RepoVigia/internal/domain/errors"
	"github.com/Tomas-vilte/RepoVigia/internal/domain/ports"
	"github.com/wneessen/go-mail"
)

var _ ports.Notifier = (*SMTPNotifier)(nil)

// SMTPNotifier entrega el veredicto por SMTP con STARTTLS y login autenticado.
// El mensaje siempre sale multipart: texto plano con el cuerpo crudo y la
// alternativa HTML.
type SMTPNotifier struct {
	cfg config.SMTPConfig
}

func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) Notify(ctx context.Context, to, subject, body string) error {
	htmlBody, err := htmlAlternative(body)
	if err != nil {
		return domainerrors.NewDeliveryError(err)
	}

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return domainerrors.NewDeliveryError(err)
	}
	if err := msg.To(to); err != nil {
		return domainerrors.NewDeliveryError(err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	msg.AddAlternativeString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.Username),
		mail.WithPassword(n.cfg.Password),
	)
	if err != nil {
		return domainerrors.NewDeliveryError(err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return domainerrors.NewDeliveryError(err)
	}
	return nil
}
