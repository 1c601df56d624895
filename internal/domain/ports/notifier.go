package ports

import "context"

// Notifier entrega el veredicto por mail.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string) error
}
