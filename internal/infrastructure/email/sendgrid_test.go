package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"skill-staffing/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, retries int) *SendGrid {
	c := NewSendGrid(config.EmailConfig{
		SendGridAPIKey:  "key",
		SendGridBaseURL: url,
		FromEmail:       "noreply@example.com",
		FromName:        "Staffing",
		MaxRetries:      retries,
	}, nil)
	c.retryDelay = time.Millisecond
	return c
}

func TestSend_PostsMail(t *testing.T) {
	var got mailSendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL, 0).Send(context.Background(), Message{
		To:      Address{Email: "erin@example.com"},
		Subject: "Skill update approved",
		Text:    "Go (ADVANCED -> EXPERT)",
	})
	require.NoError(t, err)
	require.Len(t, got.Personalizations, 1)
	assert.Equal(t, "erin@example.com", got.Personalizations[0].To[0].Email)
	assert.Equal(t, "noreply@example.com", got.From.Email)
}

func TestSend_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL, 3).Send(context.Background(), Message{
		To: Address{Email: "erin@example.com"}, Subject: "s", Text: "t",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSend_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad"}]}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL, 3).Send(context.Background(), Message{
		To: Address{Email: "erin@example.com"}, Subject: "s", Text: "t",
	})
	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadRequest, he.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSend_NotConfigured(t *testing.T) {
	c := NewSendGrid(config.EmailConfig{}, nil)
	assert.False(t, c.Enabled())
	assert.ErrorIs(t, c.Send(context.Background(), Message{}), ErrNotConfigured)
}
