// Package respond turns LLM completions into typed, validated responses for
// each stage of the analysis workflow.
package respond

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/salescope/salescope/pkg/llm"
	"github.com/salescope/salescope/pkg/metrics"
	"github.com/salescope/salescope/pkg/prompts"
)

// Config holds the dependencies of a Responder.
type Config struct {
	Logger  *slog.Logger
	LLM     llm.Client
	Prompts *prompts.Prompts
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.LLM == nil {
		return fmt.Errorf("llm client is required")
	}
	if c.Prompts == nil {
		return fmt.Errorf("prompts are required")
	}
	return nil
}

// Responder issues structured completion calls. It performs no retries: a
// failed call surfaces to the caller as-is.
type Responder struct {
	cfg Config
}

func New(cfg Config) (*Responder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Responder{cfg: cfg}, nil
}

// complete wraps the LLM call with per-operation metrics.
func (r *Responder) complete(ctx context.Context, op, system string, msgs []llm.Message) (string, error) {
	start := time.Now()
	raw, err := r.cfg.LLM.Complete(ctx, system, msgs)
	metrics.LLMRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(op, "error").Inc()
		return "", err
	}
	metrics.LLMRequestsTotal.WithLabelValues(op, "ok").Inc()
	return raw, nil
}
