package mail

import (
	"context"
	"html"
	"regexp"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

var hrefRe = regexp.MustCompile(`href="([^"]+)"`)

// LogSender logs the sign-in link instead of mailing it. Only allowed in
// development mode, where the log is the delivery channel; the body itself
// is never logged.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (LogSender) Send(ctx context.Context, to, subject, body string) error {
	logutil.GetLogger(ctx).Info("mail not sent (dev mode)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("link", linkFromHTML(body)),
	)
	return nil
}

// linkFromHTML returns the first href in body, or "" if there is none.
func linkFromHTML(body string) string {
	m := hrefRe.FindStringSubmatch(body)
	if len(m) != 2 {
		return ""
	}
	return html.UnescapeString(m[1])
}
