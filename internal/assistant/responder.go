package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/omriShneor/project_casa/internal/config"
	"github.com/omriShneor/project_casa/internal/llm"
	"go.uber.org/zap"
)

// FallbackReply is sent whenever generation fails or comes back empty.
const FallbackReply = `Disculpá, hubo un error. Escribí "menu" para ver opciones.`

type Responder struct {
	generator llm.Generator
	profile   *config.Profile
	timeout   time.Duration
	logger    *zap.Logger
}

func NewResponder(generator llm.Generator, profile *config.Profile, timeout time.Duration, logger *zap.Logger) *Responder {
	if profile == nil {
		profile = config.DefaultProfile()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Responder{generator: generator, profile: profile, timeout: timeout, logger: logger}
}

// Answer never fails: any backend problem yields FallbackReply.
func (r *Responder) Answer(ctx context.Context, question string, b Bundle) string {
	if r.generator == nil {
		r.logger.Warn("no generation backend configured")
		return FallbackReply
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	reply, err := r.generator.Generate(ctx, SystemPrompt(r.profile, b), question)
	if err != nil {
		r.logger.Error("generation failed",
			zap.String("backend", r.generator.Name()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return FallbackReply
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return FallbackReply
	}

	r.logger.Debug("generated reply",
		zap.String("backend", r.generator.Name()),
		zap.Bool("manual", b.Manual != ""),
		zap.Int("listings", len(b.Listings)),
		zap.Duration("elapsed", time.Since(start)))
	return reply
}
