package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/faq-chatbot/internal/infra/config"
)

const (
	retryBodyLimit = 1 << 20 // 1 MiB
	// retryAttemptsHeader reports how many times the handler ran when more than once.
	retryAttemptsHeader = "X-Retry-Attempts"
)

var errBodyTooLarge = errors.New("request body exceeds retry limit")

// retryPolicy replays idempotent POSTs whose handler answered with a gateway class status,
// which is how a briefly unavailable knowledge base store surfaces. Paths under an
// excluded prefix (new turns, feedback, escalation, login) always run once.
type retryPolicy struct {
	maxAttempts int
	baseBackoff time.Duration
	exclusions  []string
}

func newRetryPolicy(cfg config.RetryConfig) retryPolicy {
	p := retryPolicy{maxAttempts: cfg.MaxAttempts, baseBackoff: cfg.BaseBackoff}
	for _, prefix := range cfg.Exclude {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			p.exclusions = append(p.exclusions, prefix)
		}
	}
	return p
}

func (p retryPolicy) applies(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	for _, prefix := range p.exclusions {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return false
		}
	}
	return true
}

func (p retryPolicy) backoff(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	return p.baseBackoff * time.Duration(1<<(attempt-2))
}

func withRetry(handler http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return handler
	}
	policy := newRetryPolicy(cfg)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !policy.applies(r) {
			handler.ServeHTTP(w, r)
			return
		}
		bodyBytes, err := readRequestBody(r)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, errBodyTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			http.Error(w, err.Error(), status)
			return
		}

		var (
			buffered *bufferedResponse
			ran      int
		)
		for attempt := 1; attempt <= policy.maxAttempts; attempt++ {
			if !sleepContext(r.Context(), policy.backoff(attempt)) {
				break
			}
			buffered = newBufferedResponse()
			ran = attempt
			reqCopy := r.Clone(r.Context())
			reqCopy.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			reqCopy.ContentLength = int64(len(bodyBytes))

			handler.ServeHTTP(buffered, reqCopy)
			if !buffered.transient() || attempt == policy.maxAttempts {
				break
			}
			logger.Warn("transient failure, retrying request", "path", r.URL.Path, "status", buffered.status, "attempt", attempt)
		}
		if buffered == nil {
			http.Error(w, "request cancelled", http.StatusServiceUnavailable)
			return
		}
		if ran > 1 {
			buffered.header.Set(retryAttemptsHeader, strconv.Itoa(ran))
		}
		buffered.commit(w)
	})
}

// sleepContext waits for d and reports false when ctx ends first.
func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func readRequestBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, retryBodyLimit+1))
	if err != nil {
		return nil, err
	}
	if len(data) > retryBodyLimit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

// bufferedResponse holds one attempt's response until we know whether to keep it.
type bufferedResponse struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header)}
}

func (b *bufferedResponse) Header() http.Header {
	return b.header
}

func (b *bufferedResponse) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedResponse) Flush() {}

func (b *bufferedResponse) transient() bool {
	switch b.status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func (b *bufferedResponse) commit(w http.ResponseWriter) {
	dst := w.Header()
	for k, values := range b.header {
		dst[k] = append([]string(nil), values...)
	}
	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if b.body.Len() > 0 {
		_, _ = w.Write(b.body.Bytes())
	}
}
