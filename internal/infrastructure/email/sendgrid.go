package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"skill-staffing/internal/config"
	"skill-staffing/internal/pkg/logger"

	"github.com/avast/retry-go/v4"
)

var ErrNotConfigured = errors.New("sendgrid: not configured")

type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Message struct {
	To      Address
	Subject string
	Text    string
}

// SendGrid posts plain-text mail to the v3 mail/send API.
type SendGrid struct {
	apiKey     string
	baseURL    string
	from       Address
	maxRetries uint
	retryDelay time.Duration
	httpClient *http.Client
	log        *logger.Logger
}

func NewSendGrid(cfg config.EmailConfig, log *logger.Logger) *SendGrid {
	base := strings.TrimRight(strings.TrimSpace(cfg.SendGridBaseURL), "/")
	if base == "" {
		base = "https://api.sendgrid.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &SendGrid{
		apiKey:     strings.TrimSpace(cfg.SendGridAPIKey),
		baseURL:    base,
		from:       Address{Email: cfg.FromEmail, Name: cfg.FromName},
		maxRetries: uint(retries),
		retryDelay: time.Second,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.OrNop(log).With("client", "sendgrid"),
	}
}

// Enabled reports whether an API key and sender are configured.
func (s *SendGrid) Enabled() bool {
	return s != nil && s.apiKey != "" && strings.TrimSpace(s.from.Email) != ""
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, body)
}

// Retryable is true for throttling and server-side failures.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             Address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
}

type personalization struct {
	To []Address `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	if !s.Enabled() {
		return ErrNotConfigured
	}
	if strings.TrimSpace(msg.To.Email) == "" {
		return fmt.Errorf("sendgrid: recipient required")
	}
	if strings.TrimSpace(msg.Subject) == "" || strings.TrimSpace(msg.Text) == "" {
		return fmt.Errorf("sendgrid: subject and text required")
	}

	body, err := json.Marshal(mailSendRequest{
		Personalizations: []personalization{{To: []Address{msg.To}}},
		From:             s.from,
		Subject:          msg.Subject,
		Content:          []mailContent{{Type: "text/plain", Value: msg.Text}},
	})
	if err != nil {
		return err
	}

	return retry.Do(
		func() error { return s.post(ctx, "/v3/mail/send", body) },
		retry.Context(ctx),
		retry.Attempts(s.maxRetries+1),
		retry.Delay(s.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var he *HTTPError
			if errors.As(err, &he) {
				return he.Retryable()
			}
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
		retry.OnRetry(func(n uint, err error) {
			s.log.Warn("sendgrid request retrying", "attempt", n+1, "error", err)
		}),
	)
}

func (s *SendGrid) post(ctx context.Context, path string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return retry.Unrecoverable(err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return nil
}
