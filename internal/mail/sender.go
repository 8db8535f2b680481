// Package mail delivers the magic-link email. Every implementation reports
// failure through its error; callers decide what a failed delivery means.
package mail

import "context"

type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}
