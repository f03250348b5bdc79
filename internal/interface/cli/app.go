package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/mnemolabs/mnemo/internal/core/ai"
	"github.com/mnemolabs/mnemo/internal/core/audit"
	"github.com/mnemolabs/mnemo/internal/core/config"
	"github.com/mnemolabs/mnemo/internal/core/narration"
	"github.com/mnemolabs/mnemo/internal/core/session"
	"github.com/mnemolabs/mnemo/internal/core/store"
)

// app bundles the wired collaborators behind every command.
type app struct {
	cfg     *config.Config
	orch    *session.Orchestrator
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp loads config, applies flag overrides, and wires the
// orchestrator. The returned app must be closed.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if provider != "" {
		cfg.Provider = provider
	}
	if noNarration {
		cfg.Narration.Disabled = true
	}

	a := &app{cfg: cfg}

	st, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	a.closers = append(a.closers, func() { _ = st.Close() })

	gateway, err := newGateway(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.orch = session.New(session.Config{
		Gateway:      gateway,
		Store:        st,
		Narrator:     newNarrator(ctx, cfg),
		Audit:        a.newAuditor(cfg),
		ExcerptLimit: cfg.ExcerptLimit,
	})
	a.orch.Rehydrate()
	return a, nil
}

func newGateway(ctx context.Context, cfg *config.Config) (ai.Gateway, error) {
	switch cfg.Provider {
	case "googleai":
		return ai.NewGoogleAI(ctx, ai.GoogleAIConfig{
			APIKey:       cfg.GeminiAPIKey,
			Model:        cfg.GeminiModel,
			ExcerptLimit: cfg.ExcerptLimit,
		})
	case "bedrock":
		return ai.NewBedrock(ctx, ai.BedrockConfig{
			Region:          cfg.AWSRegion,
			Profile:         cfg.AWSProfile,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			ModelID:         cfg.BedrockModelID,
			ExcerptLimit:    cfg.ExcerptLimit,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q (want googleai or bedrock)", cfg.Provider)
	}
}

// newNarrator returns a muted engine when narration is disabled or no
// speech command is installed. Commands keep working either way.
func newNarrator(ctx context.Context, cfg *config.Config) *narration.Engine {
	if cfg.Narration.Disabled {
		return narration.NewEngine(nil, cfg.Narration.Preference())
	}
	synth, err := narration.NewCommandSynthesizer()
	if err != nil {
		log.Debug().Err(err).Msg("narration unavailable")
		return narration.NewEngine(nil, cfg.Narration.Preference())
	}
	return narration.NewEngine(synth, cfg.Narration.Preference())
}

func (a *app) newAuditor(cfg *config.Config) audit.Emitter {
	if cfg.AuditLogPath == "" {
		return audit.Nop{}
	}
	if err := os.MkdirAll(filepath.Dir(cfg.AuditLogPath), 0755); err != nil {
		log.Warn().Err(err).Msg("audit log disabled")
		return audit.Nop{}
	}
	f, err := os.OpenFile(cfg.AuditLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Warn().Err(err).Msg("audit log disabled")
		return audit.Nop{}
	}
	logger := audit.NewLogger(f)
	a.closers = append(a.closers, func() {
		logger.Close()
		_ = f.Close()
	})
	return logger
}
