// Package notify formats task digests and delivers them by SMS.
package notify

import (
	"context"
	"errors"
)

var ErrNoDestination = errors.New("notify: no destination")

// Sender delivers one text message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// Dispatcher binds a Sender to a default destination. A nil Sender makes
// every send fail with ErrNotConfigured.
type Dispatcher struct {
	Sender    Sender
	DefaultTo string
}

func (d *Dispatcher) Configured() bool {
	return d != nil && d.Sender != nil
}

func (d *Dispatcher) destination(to string) (string, error) {
	if !d.Configured() {
		return "", ErrNotConfigured
	}
	if dest := NormalizePhone(to); dest != "" {
		return dest, nil
	}
	if dest := NormalizePhone(d.DefaultTo); dest != "" {
		return dest, nil
	}
	return "", ErrNoDestination
}

// SendDigest sends the digest for date to `to`, or to DefaultTo when `to` is
// blank.
func (d *Dispatcher) SendDigest(ctx context.Context, to, date string, items []DigestItem) (string, error) {
	dest, err := d.destination(to)
	if err != nil {
		return "", err
	}
	return d.Sender.Send(ctx, dest, FormatDigest(date, items))
}

func (d *Dispatcher) SendLaterReminder(ctx context.Context, to string, n int) (string, error) {
	dest, err := d.destination(to)
	if err != nil {
		return "", err
	}
	return d.Sender.Send(ctx, dest, FormatLaterReminder(n))
}
