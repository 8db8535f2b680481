package mail

import (
	"bytes"
	"html/template"
	"time"
)

var magicLinkTmpl = template.Must(template.New("magic_link").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Arial,sans-serif;">
<div style="max-width:600px;margin:0 auto;padding:40px 20px;">
<h2 style="font-size:18px;font-weight:400;margin-bottom:20px;">Sign in to your account</h2>
<p style="font-size:14px;color:#888888;margin-bottom:30px;">Click the button below to sign in. This link expires in {{.Minutes}} minutes.</p>
<a href="{{.Link}}" style="display:inline-block;padding:16px 32px;text-decoration:none;font-weight:600;border-radius:4px;background-color:#000000;color:#ffffff;">Sign In</a>
<p style="font-size:12px;color:#666666;margin-top:40px;">If you didn't request this email, you can safely ignore it.</p>
<p style="font-size:12px;color:#444444;margin-top:20px;">Or copy and paste this link:<br><span style="word-break:break-all;">{{.Link}}</span></p>
</div>
</body>
</html>
`))

type magicLinkData struct {
	Link    string
	Minutes int
}

func RenderMagicLink(link string, ttl time.Duration) (string, error) {
	var buf bytes.Buffer
	if err := magicLinkTmpl.Execute(&buf, magicLinkData{Link: link, Minutes: int(ttl / time.Minute)}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
