// Package alert turns a newly seen job into a chat message and sends it.
package alert

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vagabot/vagabot/internal/model"
)

// Header opens every alert message.
const Header = "Nova vaga cadastrada:"

// Dispatcher renders one record per call and hands it to the sink.
type Dispatcher struct {
	sink        model.Sink
	destination string
}

// NewDispatcher creates a dispatcher sending to a fixed destination.
func NewDispatcher(sink model.Sink, destination string) *Dispatcher {
	return &Dispatcher{sink: sink, destination: destination}
}

// Alert sends r. Delivery errors are returned as is; there is no retry.
func (d *Dispatcher) Alert(ctx context.Context, r model.Record, emojis bool) error {
	msg := Render(r, emojis)
	if err := d.sink.Send(ctx, d.destination, msg); err != nil {
		return fmt.Errorf("alert %q: %w", r.Title(), err)
	}
	return nil
}

// Render builds the alert text. Empty fields are left out. The emoji variant
// prefixes each line with the field's emoji; the plain one capitalises values.
func Render(r model.Record, emojis bool) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n")

	for _, f := range model.JobFields {
		v := r[f.Key]
		if v == "" {
			continue
		}
		b.WriteString("\n")
		if emojis {
			fmt.Fprintf(&b, "%s %s: %s", f.Emoji, f.Label, v)
			continue
		}
		fmt.Fprintf(&b, "%s: %s", f.Label, capitalize(v))
	}
	return b.String()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
