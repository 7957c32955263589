package notifier

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-pkgz/notify"

	"github.com/vagabot/vagabot/internal/model"
)

// Ensure Router implements model.Sink.
var _ model.Sink = (*Router)(nil)

// Router hands messages to go-pkgz/notify providers, picking the provider by
// the destination schema ("telegram:-1001234", "telegram:vagas_channel").
type Router struct {
	notifiers []notify.Notifier
}

// NewRouter returns a sink dispatching to the given providers.
func NewRouter(notifiers ...notify.Notifier) *Router {
	return &Router{notifiers: notifiers}
}

// NewTelegramRouter builds a Router with a single Telegram bot provider.
func NewTelegramRouter(token string, timeout time.Duration) (*Router, error) {
	tg, err := notify.NewTelegram(notify.TelegramParams{Token: token, Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("telegram notifier: %w", err)
	}
	return NewRouter(tg), nil
}

// Send delivers message to destination. Telegram destinations are sent in
// HTML parse mode with the text escaped, so field values reach the chat
// verbatim whatever characters they hold.
func (r *Router) Send(ctx context.Context, destination, message string) error {
	if strings.HasPrefix(destination, telegramSchema+":") {
		dest, err := htmlDestination(destination)
		if err != nil {
			return err
		}
		destination = dest
		message = notify.EscapeTelegramText(message)
	}
	if err := notify.Send(ctx, r.notifiers, destination, message); err != nil {
		return fmt.Errorf("send to %s: %w", destination, err)
	}
	return nil
}

const telegramSchema = "telegram"

// htmlDestination adds parseMode=HTML to a telegram destination that has no
// parse mode. Any other explicit mode is rejected: alerts are plain text.
func htmlDestination(destination string) (string, error) {
	u, err := url.Parse(destination)
	if err != nil {
		return "", fmt.Errorf("destination %q: %w", destination, err)
	}
	q := u.Query()
	switch mode := q.Get("parseMode"); mode {
	case "":
		q.Set("parseMode", "HTML")
		u.RawQuery = q.Encode()
		return u.String(), nil
	case "HTML":
		return destination, nil
	default:
		return "", fmt.Errorf("destination %q: parse mode %s is not supported, use HTML", destination, mode)
	}
}
