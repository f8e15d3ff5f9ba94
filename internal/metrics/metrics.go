// Package metrics exposes Prometheus collectors for tutoring sessions, model
// calls and the HTTP API.
package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/abhisek/parlo/internal/llm"
	"github.com/abhisek/parlo/internal/tutor"
)

// Metrics holds all Prometheus metrics for parlo.
type Metrics struct {
	// Session metrics
	SessionsStarted *prometheus.CounterVec
	SessionsEnded   prometheus.Counter
	SessionsActive  prometheus.Gauge
	Turns           *prometheus.CounterVec
	Mistakes        *prometheus.CounterVec
	SessionMistakes prometheus.Histogram

	// Model metrics
	ModelRequests *prometheus.CounterVec
	ModelLatency  *prometheus.HistogramVec
	ModelTokens   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SessionsStarted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parlo_sessions_started_total",
				Help: "Total number of practice sessions started",
			},
			[]string{"learning_language", "level"},
		),
		SessionsEnded: f.NewCounter(prometheus.CounterOpts{
			Name: "parlo_sessions_ended_total",
			Help: "Total number of practice sessions summarized and closed",
		}),
		SessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "parlo_sessions_active",
			Help: "Sessions started but not yet ended",
		}),
		Turns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parlo_turns_total",
				Help: "Total number of learner turns",
			},
			[]string{"result"},
		),
		Mistakes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parlo_mistakes_total",
				Help: "Total number of recorded mistakes",
			},
			[]string{"type"},
		),
		SessionMistakes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "parlo_session_mistakes",
			Help:    "Mistakes per ended session",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		}),

		ModelRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parlo_model_requests_total",
				Help: "Total number of model requests",
			},
			[]string{"model", "purpose", "success"},
		),
		ModelLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "parlo_model_request_duration_seconds",
				Help:    "Model request duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to 51s
			},
			[]string{"model", "purpose"},
		),
		ModelTokens: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parlo_model_tokens_total",
				Help: "Total tokens processed by the model",
			},
			[]string{"model", "type"}, // type: input, output
		),

		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parlo_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "parlo_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// SessionObserver adapts Metrics to tutor.Observer.
func (m *Metrics) SessionObserver() tutor.Observer {
	return sessionObserver{m}
}

type sessionObserver struct{ m *Metrics }

func (o sessionObserver) SessionStarted(p tutor.Profile) {
	o.m.SessionsStarted.WithLabelValues(p.LearningLanguage, string(p.Level)).Inc()
	o.m.SessionsActive.Inc()
}

func (o sessionObserver) TurnFinished(err error) {
	o.m.Turns.WithLabelValues(turnResult(err)).Inc()
}

func (o sessionObserver) MistakeRecorded(t tutor.MistakeType) {
	o.m.Mistakes.WithLabelValues(string(t)).Inc()
}

func (o sessionObserver) SessionEnded(mistakes int) {
	o.m.SessionsEnded.Inc()
	o.m.SessionsActive.Dec()
	o.m.SessionMistakes.Observe(float64(mistakes))
}

func turnResult(err error) string {
	if err == nil {
		return "ok"
	}
	var modelErr *tutor.ModelCallError
	if errors.As(err, &modelErr) {
		return "model_error"
	}
	return "error"
}

// InstrumentProvider wraps p so every Generate call is counted and timed.
func (m *Metrics) InstrumentProvider(p llm.Provider) llm.Provider {
	return &instrumentedProvider{inner: p, m: m}
}

type instrumentedProvider struct {
	inner llm.Provider
	m     *Metrics
}

func (p *instrumentedProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	model := p.inner.ModelID()
	purpose := llm.PurposeFrom(ctx)

	start := time.Now()
	resp, err := p.inner.Generate(ctx, req)
	p.m.ModelLatency.WithLabelValues(model, purpose).Observe(time.Since(start).Seconds())
	p.m.ModelRequests.WithLabelValues(model, purpose, strconv.FormatBool(err == nil)).Inc()
	if resp != nil {
		p.m.ModelTokens.WithLabelValues(model, "input").Add(float64(resp.Usage.InputTokens))
		p.m.ModelTokens.WithLabelValues(model, "output").Add(float64(resp.Usage.OutputTokens))
	}
	return resp, err
}

func (p *instrumentedProvider) ModelID() string {
	return p.inner.ModelID()
}
