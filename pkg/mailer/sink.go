package mailer

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
}

// Sink delivers email messages. The HTTP provider, the noop sink used when no
// API key is configured, and the test recorder all implement it.
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

const resendEndpoint = "https://api.resend.com/emails"

type resendSink struct {
	apiKey string
	from   string
	client *http.Client
}

// NewResendSink returns a Sink that delivers through the Resend API.
func NewResendSink(apiKey, from string) Sink {
	return &resendSink{
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func (s *resendSink) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(resendPayload{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Errorf("resend returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}

// NoopSink silently discards messages. Used when no mail API key is
// configured so the rest of the app doesn't have to care.
type NoopSink struct{}

func (NoopSink) Send(_ context.Context, _ Message) error {
	return nil
}

// Recorder is a Sink for tests that captures sent messages.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

// Messages returns a copy of everything sent so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}
