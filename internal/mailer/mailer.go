// Package mailer delivers verification links. Which implementation runs is
// a deployment choice made in the config; the callers only see the Mailer
// interface.
package mailer

import "context"

type Mailer interface {
	// Send delivers the verification link to the address. A non-nil error
	// means the message did not go out; there is no retry behind this call.
	Send(ctx context.Context, to, link string) error
}
