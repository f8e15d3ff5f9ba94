package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/parlo/internal/llm"
	"github.com/abhisek/parlo/internal/metrics"
	"github.com/abhisek/parlo/internal/scenario"
	"github.com/abhisek/parlo/internal/store"
	"github.com/abhisek/parlo/internal/tutor"
)

type testEnv struct {
	srv    *httptest.Server
	server *Server
	mock   *llm.MockProvider
	repo   store.SessionRepo
	clock  *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEnv(t *testing.T, opts ...func(*Config)) *testEnv {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "parlo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	catalog, err := scenario.Load("")
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	mock := llm.NewMockProvider()

	cfg := Config{
		Provider: m.InstrumentProvider(mock),
		Sessions: st.SessionRepo(),
		Catalog:  catalog,
		Tutor:    tutor.DefaultConfig(),
		Metrics:  m,
		Gatherer: reg,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	s := New(cfg)
	clock := &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	s.now = clock.Now

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, server: s, mock: mock, repo: st.SessionRepo(), clock: clock}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (e *testEnv) create(t *testing.T) sessionResponse {
	t.Helper()
	e.mock.AddText("¡Hola! Bienvenido. ¿Qué desea pedir?")
	status, data := e.do(t, http.MethodPost, "/api/sessions", createSessionRequest{
		UserID:           "learner-1",
		NativeLanguage:   "English",
		LearningLanguage: "Spanish",
		Level:            "Beginner",
		Scenario:         "restaurant",
	})
	require.Equal(t, http.StatusCreated, status, string(data))

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	status, data := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))
}

func TestListScenarios(t *testing.T) {
	env := newTestEnv(t)
	status, data := env.do(t, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, status)

	var got []scenario.Scenario
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Len(t, got, 5)
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	created := env.create(t)

	assert.NotEmpty(t, created.Key)
	assert.Equal(t, "learner-1", created.UserID)
	assert.Equal(t, "active", created.State)
	assert.Equal(t, tutor.LevelBeginner, created.Profile.Level)
	assert.Equal(t, "At a restaurant ordering food", created.Profile.Scenario)
	require.NotNil(t, created.Reply)
	assert.Equal(t, "¡Hola! Bienvenido. ¿Qué desea pedir?", created.Reply.Display)
	assert.Contains(t, env.mock.Calls[0].System, "At a restaurant ordering food")

	env.mock.AddText("¡Perfecto! [Correction] You said \"yo quiero un agua\" - it should be \"quiero agua\". This is because of vocabulary use")
	status, data := env.do(t, http.MethodPost, "/api/sessions/"+created.Key+"/turns", turnRequest{Message: "yo quiero un agua"})
	require.Equal(t, http.StatusOK, status, string(data))

	var reply tutor.Reply
	require.NoError(t, json.Unmarshal(data, &reply))
	assert.Equal(t, "¡Perfecto!", reply.Display)
	require.Len(t, reply.Mistakes, 1)
	assert.Equal(t, tutor.Vocabulary, reply.Mistakes[0].Type)

	status, data = env.do(t, http.MethodGet, "/api/sessions/"+created.Key+"/mistakes", nil)
	require.Equal(t, http.StatusOK, status)
	var records []store.MistakeRecord
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "yo quiero un agua", records[0].MistakeText)
	assert.Equal(t, created.SessionID, records[0].SessionID)

	env.mock.AddText("1. Practise articles with uncountable nouns.")
	status, data = env.do(t, http.MethodPost, "/api/sessions/"+created.Key+"/end", nil)
	require.Equal(t, http.StatusOK, status, string(data))
	var ended endResponse
	require.NoError(t, json.Unmarshal(data, &ended))
	assert.Equal(t, 1, ended.Mistakes)
	assert.Contains(t, ended.Summary, "## Vocabulary (1)")
	assert.True(t, strings.HasSuffix(ended.Summary, "1. Practise articles with uncountable nouns."))

	rec, err := env.repo.GetSession(t.Context(), created.SessionID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Ended())

	status, _ = env.do(t, http.MethodPost, "/api/sessions/"+created.Key+"/turns", turnRequest{Message: "hola"})
	assert.Equal(t, http.StatusConflict, status)

	status, data = env.do(t, http.MethodGet, "/api/sessions/"+created.Key, nil)
	require.Equal(t, http.StatusOK, status)
	var got sessionResponse
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "ended", got.State)
	assert.Len(t, got.Messages, 3)
}

func TestCreateSessionValidation(t *testing.T) {
	env := newTestEnv(t)

	status, data := env.do(t, http.MethodPost, "/api/sessions", createSessionRequest{
		LearningLanguage: "French",
		Level:            "beginner",
		Scenario:         "party",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	var errResp errorResponse
	require.NoError(t, json.Unmarshal(data, &errResp))
	assert.Equal(t, "VALIDATION_ERROR", errResp.Error.Code)
	assert.Equal(t, "Please fill in all required fields", errResp.Error.Message)
	assert.Equal(t, 0, env.mock.CallCount())

	status, _ = env.do(t, http.MethodPost, "/api/sessions", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestModelFailure(t *testing.T) {
	env := newTestEnv(t)
	created := env.create(t)

	env.mock.AddResponse(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	status, data := env.do(t, http.MethodPost, "/api/sessions/"+created.Key+"/turns", turnRequest{Message: "hola"})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, string(data), "MODEL_ERROR")

	env.mock.AddResponse(llm.MockResponse{Err: &llm.ErrRateLimit{}})
	status, data = env.do(t, http.MethodPost, "/api/sessions/"+created.Key+"/turns", turnRequest{Message: "hola"})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Contains(t, string(data), "RATE_LIMITED")

	status, _ = env.do(t, http.MethodPost, "/api/sessions/"+created.Key+"/turns", turnRequest{Message: "   "})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUnknownSession(t *testing.T) {
	env := newTestEnv(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/sessions/nope"},
		{http.MethodPost, "/api/sessions/nope/turns"},
		{http.MethodPost, "/api/sessions/nope/end"},
		{http.MethodGet, "/api/sessions/nope/mistakes"},
	} {
		status, _ := env.do(t, tc.method, tc.path, turnRequest{Message: "x"})
		assert.Equal(t, http.StatusNotFound, status, tc.path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.create(t)

	status, data := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, status)
	body := string(data)
	assert.Contains(t, body, `parlo_sessions_started_total{learning_language="Spanish",level="beginner"} 1`)
	assert.Contains(t, body, `parlo_http_requests_total{method="POST",route="/api/sessions`)
	assert.Contains(t, body, `status="201"`)
}

func TestRegistryEvictsEndedSessions(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.EndedRetention = 10 * time.Minute })
	created := env.create(t)

	status, data := env.do(t, http.MethodPost, "/api/sessions/"+created.Key+"/end", nil)
	require.Equal(t, http.StatusOK, status, string(data))

	// Ending again within the retention window returns the cached summary.
	env.clock.Advance(5 * time.Minute)
	status, again := env.do(t, http.MethodPost, "/api/sessions/"+created.Key+"/end", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, string(data), string(again))

	env.clock.Advance(11 * time.Minute)
	assert.Equal(t, 1, env.server.Prune(t.Context()))
	assert.Zero(t, env.server.Len())

	status, _ = env.do(t, http.MethodPost, "/api/sessions/"+created.Key+"/end", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRegistryClosesIdleSessions(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.IdleTimeout = time.Hour })
	created := env.create(t)

	env.clock.Advance(30 * time.Minute)
	status, _ := env.do(t, http.MethodGet, "/api/sessions/"+created.Key, nil)
	require.Equal(t, http.StatusOK, status)

	// The lookup above refreshed the session, so it survives another 45m.
	env.clock.Advance(45 * time.Minute)
	assert.Zero(t, env.server.Prune(t.Context()))

	env.clock.Advance(2 * time.Hour)
	status, _ = env.do(t, http.MethodGet, "/api/sessions/"+created.Key, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, 1, env.server.Prune(t.Context()))

	rec, err := env.repo.GetSession(t.Context(), created.SessionID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Ended(), "idle eviction closes the store row")
}

func TestRegistryCap(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.MaxSessions = 2 })

	first := env.create(t)
	env.clock.Advance(time.Minute)
	second := env.create(t)
	env.clock.Advance(time.Minute)
	third := env.create(t)

	assert.Equal(t, 2, env.server.Len())
	status, _ := env.do(t, http.MethodGet, "/api/sessions/"+first.Key, nil)
	assert.Equal(t, http.StatusNotFound, status)
	for _, key := range []string{second.Key, third.Key} {
		status, _ := env.do(t, http.MethodGet, "/api/sessions/"+key, nil)
		assert.Equal(t, http.StatusOK, status)
	}

	rec, err := env.repo.GetSession(t.Context(), first.SessionID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Ended())
}
