package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/faq-chatbot/internal/domain/auth"
	"github.com/yanqian/faq-chatbot/internal/domain/faq"
	"github.com/yanqian/faq-chatbot/internal/infra/config"
	apperrors "github.com/yanqian/faq-chatbot/pkg/errors"
)

func TestRouter_AskAnswered(t *testing.T) {
	sessionID := uuid.New()
	turnID := uuid.New()
	svc := &stubFAQ{
		askFn: func(ctx context.Context, req faq.AskRequest) (faq.AskResponse, bool, error) {
			require.Equal(t, "배송 얼마나 걸려요", req.Question)
			require.Empty(t, req.SessionID)
			return faq.AskResponse{
				SessionID: sessionID,
				Result: faq.Result{
					TurnID:          turnID,
					Query:           req.Question,
					MatchedQuestion: "배송은 얼마나 걸리나요?",
					Answer:          "보통 2~3일 소요됩니다.",
					Score:           75,
					Outcome:         faq.OutcomeAnswered,
				},
			}, true, nil
		},
	}

	recorder := performRequest(newRouterUnderTest(t, svc, &stubAuth{}), http.MethodPost, "/api/v1/faq/ask", `{"question":"배송 얼마나 걸려요"}`, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, sessionID.String(), recorder.Header().Get(SessionHeader))

	var got faq.AskResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, sessionID, got.SessionID)
	require.Equal(t, turnID, got.TurnID)
	require.Equal(t, faq.OutcomeAnswered, got.Outcome)
	require.Equal(t, "보통 2~3일 소요됩니다.", got.Answer)
	require.Equal(t, 75, got.Score)
}

func TestRouter_AskForwardsSessionHeader(t *testing.T) {
	sessionID := uuid.New()
	svc := &stubFAQ{
		askFn: func(ctx context.Context, req faq.AskRequest) (faq.AskResponse, bool, error) {
			require.Equal(t, sessionID.String(), req.SessionID)
			return faq.AskResponse{SessionID: sessionID, Result: faq.Result{Outcome: faq.OutcomeUnanswered}}, true, nil
		},
	}

	headers := map[string]string{SessionHeader: " " + sessionID.String() + " "}
	recorder := performRequest(newRouterUnderTest(t, svc, &stubAuth{}), http.MethodPost, "/api/v1/faq/ask", `{"question":"오늘 날씨 어때요"}`, headers)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, sessionID.String(), recorder.Header().Get(SessionHeader))
}

func TestRouter_AskBlankQuestion(t *testing.T) {
	svc := &stubFAQ{
		askFn: func(ctx context.Context, req faq.AskRequest) (faq.AskResponse, bool, error) {
			return faq.AskResponse{}, false, nil
		},
	}

	recorder := performRequest(newRouterUnderTest(t, svc, &stubAuth{}), http.MethodPost, "/api/v1/faq/ask", `{"question":"   "}`, nil)
	require.Equal(t, http.StatusNoContent, recorder.Code)
	require.Empty(t, recorder.Body.Bytes())
	require.Empty(t, recorder.Header().Get(SessionHeader))
}

func TestRouter_AskInvalidJSON(t *testing.T) {
	recorder := performRequest(newRouterUnderTest(t, &stubFAQ{}, &stubAuth{}), http.MethodPost, "/api/v1/faq/ask", `{"question":123}`, nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestRouter_AskMalformedSession(t *testing.T) {
	svc := &stubFAQ{
		askFn: func(ctx context.Context, req faq.AskRequest) (faq.AskResponse, bool, error) {
			return faq.AskResponse{}, false, apperrors.Wrap(faq.CodeInvalidInput, "malformed session id", nil)
		},
	}

	headers := map[string]string{SessionHeader: "not-a-uuid"}
	recorder := performRequest(newRouterUnderTest(t, svc, &stubAuth{}), http.MethodPost, "/api/v1/faq/ask", `{"question":"환불"}`, headers)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Equal(t, "invalid_request", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_Feedback(t *testing.T) {
	sessionID := uuid.New().String()
	turnID := uuid.New().String()
	svc := &stubFAQ{
		feedbackFn: func(ctx context.Context, req faq.FeedbackRequest) error {
			require.Equal(t, sessionID, req.SessionID)
			require.Equal(t, turnID, req.TurnID)
			require.Equal(t, "positive", req.Sentiment)
			return nil
		},
	}

	headers := map[string]string{SessionHeader: sessionID}
	recorder := performRequest(newRouterUnderTest(t, svc, &stubAuth{}), http.MethodPost, "/api/v1/faq/turns/"+turnID+"/feedback", `{"sentiment":"positive"}`, headers)
	require.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestRouter_FeedbackErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "unknown turn", err: apperrors.Wrap(faq.CodeTurnNotFound, "turn not found", nil), status: http.StatusNotFound, code: faq.CodeTurnNotFound},
		{name: "unknown session", err: apperrors.Wrap(faq.CodeSessionNotFound, "session not found", nil), status: http.StatusNotFound, code: faq.CodeSessionNotFound},
		{name: "not answered", err: apperrors.Wrap(faq.CodeInvalidState, "feedback only applies to answered turns", nil), status: http.StatusConflict, code: faq.CodeInvalidState},
		{name: "log unavailable", err: apperrors.Wrap(faq.CodePersistenceFailure, "failed to record feedback", nil), status: http.StatusServiceUnavailable, code: faq.CodePersistenceFailure},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubFAQ{
				feedbackFn: func(ctx context.Context, req faq.FeedbackRequest) error { return tc.err },
			}
			recorder := performRequest(newRouterUnderTest(t, svc, &stubAuth{}), http.MethodPost, "/api/v1/faq/turns/abc/feedback", `{"sentiment":"negative"}`, nil)
			require.Equal(t, tc.status, recorder.Code)
			require.Equal(t, tc.code, decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
		})
	}
}

func TestRouter_Escalate(t *testing.T) {
	calls := 0
	svc := &stubFAQ{
		escalateFn: func(ctx context.Context, req faq.EscalateRequest) error {
			calls++
			require.Equal(t, "turn-1", req.TurnID)
			return nil
		},
	}

	recorder := performRequest(newRouterUnderTest(t, svc, &stubAuth{}), http.MethodPost, "/api/v1/faq/turns/turn-1/escalate", "", nil)
	require.Equal(t, http.StatusAccepted, recorder.Code)
	require.Equal(t, 1, calls)
}

func TestRouter_EscalateNotifyFailureIsNotRetried(t *testing.T) {
	calls := 0
	svc := &stubFAQ{
		escalateFn: func(ctx context.Context, req faq.EscalateRequest) error {
			calls++
			return apperrors.Wrap(faq.CodeNotifyFailure, "failed to notify operator", nil)
		},
	}

	server := newRouterUnderTest(t, svc, &stubAuth{}, withRetryConfig(config.RetryConfig{
		Enabled:     true,
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		Exclude:     []string{"/api/v1/faq/turns/"},
	}))
	recorder := performRequest(server, http.MethodPost, "/api/v1/faq/turns/turn-1/escalate", "", nil)
	require.Equal(t, http.StatusBadGateway, recorder.Code)
	require.Equal(t, faq.CodeNotifyFailure, decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
	require.Equal(t, 1, calls)
}

func TestRouter_Trending(t *testing.T) {
	svc := &stubFAQ{
		trendingFn: func(ctx context.Context) ([]faq.TrendingQuery, error) {
			return []faq.TrendingQuery{{Query: "배송은 얼마나 걸리나요?", Count: 3}}, nil
		},
	}

	recorder := performRequest(newRouterUnderTest(t, svc, &stubAuth{}), http.MethodGet, "/api/v1/faq/trending", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Recommendations []faq.TrendingQuery `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, []faq.TrendingQuery{{Query: "배송은 얼마나 걸리나요?", Count: 3}}, body.Recommendations)
}

func TestRouter_Login(t *testing.T) {
	authSvc := &stubAuth{
		loginFn: func(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
			if req.Password != "secret" {
				return auth.LoginResponse{}, apperrors.Wrap("invalid_credentials", "invalid username or password", nil)
			}
			return auth.LoginResponse{Token: "tok", Operator: "admin"}, nil
		},
	}
	server := newRouterUnderTest(t, &stubFAQ{}, authSvc)

	recorder := performRequest(server, http.MethodPost, "/api/v1/admin/login", `{"password":"secret"}`, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var resp auth.LoginResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Equal(t, "tok", resp.Token)

	recorder = performRequest(server, http.MethodPost, "/api/v1/admin/login", `{"password":"wrong"}`, nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	require.Equal(t, "invalid_credentials", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	server := newRouterUnderTest(t, &stubFAQ{}, &stubAuth{})

	recorder := performRequest(server, http.MethodGet, "/api/v1/admin/stats", "", nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = performRequest(server, http.MethodGet, "/api/v1/admin/stats", "", map[string]string{"Authorization": "Bearer bad"})
	require.Equal(t, http.StatusForbidden, recorder.Code)
	require.Equal(t, "invalid_token", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_AdminStatsAndReload(t *testing.T) {
	svc := &stubFAQ{
		statsFn: func(ctx context.Context) (faq.Stats, error) {
			return faq.Stats{Entries: 2, Sessions: 1, Threshold: 60, Counts: map[string]int64{"answered": 4}}, nil
		},
		reloadFn: func(ctx context.Context) (faq.ReloadResponse, error) {
			return faq.ReloadResponse{Entries: 2}, nil
		},
	}
	server := newRouterUnderTest(t, svc, &stubAuth{})
	headers := map[string]string{"Authorization": "Bearer good"}

	recorder := performRequest(server, http.MethodGet, "/api/v1/admin/stats", "", headers)
	require.Equal(t, http.StatusOK, recorder.Code)
	var stats faq.Stats
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &stats))
	require.Equal(t, int64(4), stats.Counts["answered"])
	require.Equal(t, 60, stats.Threshold)

	recorder = performRequest(server, http.MethodPost, "/api/v1/admin/reload", "", headers)
	require.Equal(t, http.StatusOK, recorder.Code)
	var reload faq.ReloadResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &reload))
	require.Equal(t, 2, reload.Entries)
}

func TestRouter_ReloadStoreUnavailable(t *testing.T) {
	svc := &stubFAQ{
		reloadFn: func(ctx context.Context) (faq.ReloadResponse, error) {
			return faq.ReloadResponse{}, apperrors.Wrap(faq.CodeStoreUnavailable, "failed to load knowledge base", nil)
		},
	}

	recorder := performRequest(newRouterUnderTest(t, svc, &stubAuth{}), http.MethodPost, "/api/v1/admin/reload", "", map[string]string{"Authorization": "Bearer good"})
	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	require.Equal(t, faq.CodeStoreUnavailable, decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newRouterUnderTest(t, &stubFAQ{}, &stubAuth{})
	recorder := performRequest(server, http.MethodOptions, "/api/v1/faq/ask", "", map[string]string{"Origin": "https://shop.example"})
	require.Equal(t, http.StatusNoContent, recorder.Code)
	require.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, SessionHeader, recorder.Header().Get("Access-Control-Expose-Headers"))
}

func TestWithRetry_PrefixExclusions(t *testing.T) {
	attempts := map[string]int{}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts[r.URL.Path]++
		body, _ := io.ReadAll(r.Body)
		require.Equal(t, `{"x":1}`, string(body))
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	handler := withRetry(inner, config.RetryConfig{
		Enabled:     true,
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		Exclude:     []string{"/api/v1/faq/turns/"},
	}, newTestLogger())

	for _, path := range []string{"/api/v1/admin/reload", "/api/v1/faq/turns/abc/feedback"} {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{"x":1}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		if path == "/api/v1/admin/reload" {
			require.Equal(t, "3", rec.Header().Get(retryAttemptsHeader))
		} else {
			require.Empty(t, rec.Header().Get(retryAttemptsHeader))
		}
	}
	require.Equal(t, 3, attempts["/api/v1/admin/reload"])
	require.Equal(t, 1, attempts["/api/v1/faq/turns/abc/feedback"])
}

func TestWithRetry_RecoversAndSkipsInternalErrors(t *testing.T) {
	calls := 0
	flaky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"entries":2}`))
	})
	cfg := config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond}

	rec := httptest.NewRecorder()
	withRetry(flaky, cfg, newTestLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/reload", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"entries":2}`, rec.Body.String())
	require.Equal(t, "2", rec.Header().Get(retryAttemptsHeader))
	require.Equal(t, 2, calls)

	internal := 0
	broken := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		internal++
		w.WriteHeader(http.StatusInternalServerError)
	})
	rec = httptest.NewRecorder()
	withRetry(broken, cfg, newTestLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/reload", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 1, internal)
}

func TestCORSRestrictedOrigins(t *testing.T) {
	server := newRouterUnderTest(t, &stubFAQ{}, &stubAuth{}, func(cfg *config.Config) {
		cfg.HTTP.CORS.AllowedOrigins = []string{"https://shop.example/"}
	})

	recorder := performRequest(server, http.MethodGet, "/api/v1/faq/trending", "", map[string]string{"Origin": "https://shop.example"})
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "https://shop.example", recorder.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "Origin", recorder.Header().Get("Vary"))

	recorder = performRequest(server, http.MethodGet, "/api/v1/faq/trending", "", map[string]string{"Origin": "https://evil.example"})
	require.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	server := newRouterUnderTest(t, &stubFAQ{}, &stubAuth{}, func(cfg *config.Config) {
		cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	})

	recorder := performRequest(server, http.MethodGet, "/api/v1/faq/trending", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	recorder = performRequest(server, http.MethodGet, "/api/v1/faq/trending", "", nil)
	require.Equal(t, http.StatusTooManyRequests, recorder.Code)
	require.NotEmpty(t, recorder.Header().Get("Retry-After"))
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func performRequest(server *http.Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func withRetryConfig(retry config.RetryConfig) func(*config.Config) {
	return func(cfg *config.Config) {
		cfg.HTTP.Retry = retry
	}
}

func newRouterUnderTest(t *testing.T, svc faq.Service, authSvc auth.Service, opts ...func(*config.Config)) *http.Server {
	t.Helper()
	handler := NewHandler(svc, authSvc, newTestLogger())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubFAQ struct {
	askFn      func(ctx context.Context, req faq.AskRequest) (faq.AskResponse, bool, error)
	feedbackFn func(ctx context.Context, req faq.FeedbackRequest) error
	escalateFn func(ctx context.Context, req faq.EscalateRequest) error
	trendingFn func(ctx context.Context) ([]faq.TrendingQuery, error)
	reloadFn   func(ctx context.Context) (faq.ReloadResponse, error)
	statsFn    func(ctx context.Context) (faq.Stats, error)
}

var _ faq.Service = (*stubFAQ)(nil)

func (s *stubFAQ) Ask(ctx context.Context, req faq.AskRequest) (faq.AskResponse, bool, error) {
	if s.askFn != nil {
		return s.askFn(ctx, req)
	}
	return faq.AskResponse{}, false, nil
}

func (s *stubFAQ) Feedback(ctx context.Context, req faq.FeedbackRequest) error {
	if s.feedbackFn != nil {
		return s.feedbackFn(ctx, req)
	}
	return nil
}

func (s *stubFAQ) Escalate(ctx context.Context, req faq.EscalateRequest) error {
	if s.escalateFn != nil {
		return s.escalateFn(ctx, req)
	}
	return nil
}

func (s *stubFAQ) Trending(ctx context.Context) ([]faq.TrendingQuery, error) {
	if s.trendingFn != nil {
		return s.trendingFn(ctx)
	}
	return []faq.TrendingQuery{}, nil
}

func (s *stubFAQ) Reload(ctx context.Context) (faq.ReloadResponse, error) {
	if s.reloadFn != nil {
		return s.reloadFn(ctx)
	}
	return faq.ReloadResponse{}, nil
}

func (s *stubFAQ) Stats(ctx context.Context) (faq.Stats, error) {
	if s.statsFn != nil {
		return s.statsFn(ctx)
	}
	return faq.Stats{}, nil
}

type stubAuth struct {
	loginFn func(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error)
}

var _ auth.Service = (*stubAuth)(nil)

func (s *stubAuth) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, req)
	}
	return auth.LoginResponse{}, nil
}

func (s *stubAuth) ValidateToken(ctx context.Context, token string) (auth.Claims, error) {
	if token != "good" {
		return auth.Claims{}, apperrors.Wrap("invalid_token", "token invalid", nil)
	}
	return auth.Claims{Operator: "admin", TokenType: "access", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
