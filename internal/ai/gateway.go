package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const fallbackTemplate = "I apologize, but I encountered an error processing your request. Please try again. Error: %s"

type GatewayConfig struct {
	Model        string
	SystemPrompt string
	MaxTokens    int
	Timeout      time.Duration
}

// Reply is either generated text or a fallback carrying the failure that produced it.
// Text is never empty.
type Reply struct {
	Text string
	Err  error
}

func (r Reply) Failed() bool {
	return r.Err != nil
}

// Gateway turns one completion call into a reply that always has text.
type Gateway struct {
	completer Completer
	cfg       GatewayConfig
	log       *zap.Logger
}

func NewGateway(completer Completer, cfg GatewayConfig, log *zap.Logger) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{completer: completer, cfg: cfg, log: log}
}

func (g *Gateway) Generate(ctx context.Context, history []ChatMessage, userMessage string) Reply {
	ctx, span := otel.Tracer("repbep/ai").Start(ctx, "assistant.generate", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", g.cfg.Model),
		attribute.Int("llm.history_len", len(history)),
	)

	messages := make([]ChatMessage, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, ChatMessage{Role: "user", Content: userMessage})

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	text, err := g.completer.Complete(callCtx, CompletionRequest{
		Model:     g.cfg.Model,
		System:    g.cfg.SystemPrompt,
		MaxTokens: g.cfg.MaxTokens,
		Messages:  messages,
	})
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyCompletion
	}
	if err != nil {
		if callCtx.Err() != nil && ctx.Err() == nil {
			err = fmt.Errorf("assistant timed out after %s: %w", g.cfg.Timeout, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "assistant transport failure")
		g.log.Error("assistant transport failure", zap.String("model", g.cfg.Model), zap.Error(err))
		return Reply{Text: fmt.Sprintf(fallbackTemplate, err.Error()), Err: err}
	}

	return Reply{Text: text}
}
