package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ResendSender posts to the Resend HTTP API.
type ResendSender struct {
	client   *http.Client
	endpoint string
	apiKey   string
	from     string
}

func NewResendSender(client *http.Client, endpoint, apiKey, from string) *ResendSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &ResendSender{
		client:   client,
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		from:     from,
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (s *ResendSender) Send(ctx context.Context, to, subject, html string) error {
	body, err := json.Marshal(resendRequest{From: s.from, To: []string{to}, Subject: subject, HTML: html})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("resend status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
