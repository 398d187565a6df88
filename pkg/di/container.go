// Package di wires the application's components together.
package di

import (
	"fmt"

	"npc-dialogue-engine/backend/ai"
	"npc-dialogue-engine/backend/internal/history"
	"npc-dialogue-engine/backend/internal/registry"
	"npc-dialogue-engine/backend/internal/session"
	"npc-dialogue-engine/backend/internal/ws"
	"npc-dialogue-engine/backend/pkg/config"
	"npc-dialogue-engine/backend/pkg/health"
	"npc-dialogue-engine/backend/pkg/logger"
)

// Container holds all the dependencies for the application
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	Registry    *registry.Registry
	History     *history.Store
	Generator   ai.TextGenerator
	Coordinator *session.Coordinator
	Channels    *ws.Manager
	Health      *health.Checker
}

// New creates a dependency injection container. A non-nil generator overrides
// the OpenAI client built from configuration (tests inject fakes this way).
func New(cfg *config.Config, log *logger.Logger, generator ai.TextGenerator) (*Container, error) {
	if cfg == nil {
		cfg = config.Get()
	}
	if log == nil {
		log = logger.GetGlobal()
	}

	if generator == nil {
		client, err := ai.NewClient(ai.ClientConfig{
			APIKey:  cfg.Generation.APIKey,
			Model:   cfg.Generation.Model,
			BaseURL: cfg.Generation.BaseURL,
			Timeout: cfg.Generation.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create generation client: %w", err)
		}
		generator = client
	}

	reg := registry.New()
	hist := history.NewStore()

	coordinator := session.NewCoordinator(reg, hist, generator, log, session.Config{
		HistoryWindow: cfg.Dialogue.HistoryWindow,
	})

	channels := ws.NewManager(coordinator, reg, log)

	checker := health.NewChecker()
	checker.Register("generation_gateway", func() (health.Status, string) {
		if cfg.Generation.APIKey == "" {
			return health.StatusDegraded, "generation API key not configured"
		}
		return health.StatusUp, ""
	})
	checker.Register("realtime", func() (health.Status, string) {
		return health.StatusUp, fmt.Sprintf("%d active connections", channels.ActiveCount())
	})

	return &Container{
		Config:      cfg,
		Logger:      log,
		Registry:    reg,
		History:     hist,
		Generator:   generator,
		Coordinator: coordinator,
		Channels:    channels,
		Health:      checker,
	}, nil
}
