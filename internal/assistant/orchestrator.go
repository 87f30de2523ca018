// Package assistant orchestrates conversational turns: it drives the
// external AI service with retry and backoff, parses its loosely
// structured output, and degrades to the local rule engine whenever the
// service is unusable. Respond never fails from the caller's perspective.
package assistant

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/vitalhub/portal-api/internal/assistant/aiclient"
	"github.com/vitalhub/portal-api/internal/model"
	"github.com/vitalhub/portal-api/internal/rules"
	"github.com/vitalhub/portal-api/pkg/circuitbreaker"
	"github.com/vitalhub/portal-api/pkg/metrics"
)

// Config tunes the retry/backoff policy. Defaults match the documented
// policy: one initial attempt, two rate-limit retries, 1s backoff base
// with up to 1s of jitter, 10s per attempt.
type Config struct {
	MaxRetries     int
	BackoffBase    time.Duration
	AttemptTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 2
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = 10 * time.Second
	}
}

// Request is one conversational turn plus its context.
type Request struct {
	Query   string
	Data    model.PatientContext
	History []model.Message
}

// Reply is the orchestrator's answer. Degraded reports whether the local
// rule engine produced it; the message shape is identical either way.
type Reply struct {
	Messages    []model.Message
	Result      model.AssessmentResult
	IsEmergency bool
	Degraded    bool
}

type Responder struct {
	client  aiclient.Client
	rules   *rules.Engine
	breaker *circuitbreaker.CircuitBreaker
	cfg     Config
	metrics *metrics.Metrics
	logger  zerolog.Logger

	// Injectable for tests.
	sleep  func(ctx context.Context, d time.Duration) bool
	jitter func() time.Duration
}

// NewResponder wires the orchestrator. breaker and m may be nil.
func NewResponder(client aiclient.Client, ruleEngine *rules.Engine, breaker *circuitbreaker.CircuitBreaker, cfg Config, m *metrics.Metrics, logger zerolog.Logger) *Responder {
	cfg.applyDefaults()
	return &Responder{
		client:  client,
		rules:   ruleEngine,
		breaker: breaker,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
		sleep:   sleepCtx,
		jitter:  func() time.Duration { return time.Duration(rand.Int63n(int64(time.Second))) },
	}
}

// Respond resolves one turn. Every failure path ends in a rule-engine
// answer; the caller always gets messages, never an error.
func (r *Responder) Respond(ctx context.Context, req Request) Reply {
	raw, err := r.generateWithRetry(ctx, req)
	if err != nil {
		r.logger.Warn().Err(err).Msg("ai service unusable, degrading to local rule engine")
		if r.metrics != nil {
			r.metrics.AIFallbacks.Inc()
		}
		result := r.rules.Respond(req.Query, req.Data)
		return r.reply(result, true)
	}

	result, tier := ParseAssessment(raw, req.Query)
	if r.metrics != nil {
		r.metrics.ParseTier.WithLabelValues(tierLabel(tier)).Inc()
	}
	return r.reply(result, false)
}

func (r *Responder) reply(result model.AssessmentResult, degraded bool) Reply {
	if r.metrics != nil {
		r.metrics.RiskLevels.WithLabelValues(string(result.RiskLevel)).Inc()
	}
	return Reply{
		Messages:    BuildMessages(result),
		Result:      result,
		IsEmergency: result.IsEmergency,
		Degraded:    degraded,
	}
}

// generateWithRetry performs the transport calls. Only rate-limit failures
// are retried, sequentially, with exponential backoff plus jitter. When the
// service names its own Retry-After and it exceeds the computed backoff,
// the server wins. A cancelled context aborts immediately so the caller
// degrades instead of blocking.
func (r *Responder) generateWithRetry(ctx context.Context, req Request) (string, error) {
	genReq := aiclient.Request{
		SystemPrompt: systemPrompt,
		Conversation: buildConversation(req.Query, req.History, req.Data),
	}

	var lastErr error
	var retryAfter time.Duration
	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.cfg.BackoffBase*time.Duration(1<<uint(attempt-1)) + r.jitter()
			if retryAfter > delay {
				delay = retryAfter
			}
			if !r.sleep(ctx, delay) {
				return "", ctx.Err()
			}
		}

		raw, err := r.generateOnce(ctx, genReq)
		if err == nil {
			if r.metrics != nil {
				r.metrics.AIRequests.WithLabelValues("success").Inc()
			}
			return raw, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		var rle *aiclient.RateLimitError
		if !errors.As(err, &rle) {
			if r.metrics != nil {
				r.metrics.AIRequests.WithLabelValues("error").Inc()
			}
			return "", err
		}
		retryAfter = rle.RetryAfter
		if r.metrics != nil {
			r.metrics.AIRequests.WithLabelValues("rate_limited").Inc()
		}
	}
	return "", lastErr
}

func (r *Responder) generateOnce(ctx context.Context, req aiclient.Request) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.AttemptTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r.metrics != nil {
			r.metrics.AILatency.Observe(time.Since(start).Seconds())
		}
	}()

	if r.breaker == nil {
		return r.client.Generate(attemptCtx, req)
	}

	var raw string
	err := r.breaker.Execute(func() error {
		var genErr error
		raw, genErr = r.client.Generate(attemptCtx, req)
		return genErr
	})
	return raw, err
}

// BuildMessages converts a structured result into the session messages the
// UI renders. An emergency result carries escalation quick replies; a
// normal result offers the follow-up questions as one-tap inputs.
func BuildMessages(result model.AssessmentResult) []model.Message {
	if result.IsEmergency {
		msg := model.NewEmergencyMessage(result.Answer, []string{
			"Call emergency services",
			"Contact my doctor",
			"Show nearby hospitals",
		})
		return []model.Message{msg}
	}
	if len(result.FollowUpQuestions) > 0 {
		return []model.Message{model.NewQuickReplyMessage(result.Answer, result.FollowUpQuestions)}
	}
	return []model.Message{model.NewAssistantMessage(result.Answer)}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func tierLabel(tier int) string {
	switch tier {
	case 1:
		return "direct"
	case 2:
		return "embedded"
	default:
		return "heuristic"
	}
}
