package app

import (
	"context"
	"fmt"

	"podscript/internal/dialogue"
	"podscript/internal/gateway/config"
	"podscript/internal/gateway/handler"
	"podscript/internal/gateway/server"
	"podscript/internal/gateway/service/scripts"
	"podscript/internal/llmclient"
	"podscript/internal/pdftext"
)

type App struct {
	server *server.Server
	llm    llmclient.Client
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	stores, err := initStores(cfg)
	if err != nil {
		return nil, err
	}

	llm, err := llmclient.NewGeminiClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to init llm client: %w", err)
	}

	svc := scripts.NewService(
		pdftext.NewExtractor(),
		dialogue.NewGenerator(llm, cfg.LLM.MaxTurns),
		stores.blobs,
		stores.records,
		cfg.TextBudget,
	)

	mux := server.NewMux(handler.NewScriptHandler(svc))
	srv := server.New(cfg.Port, mux)

	return &App{server: srv, llm: llm}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	if a.llm != nil {
		_ = a.llm.Close()
	}
	return a.server.Shutdown(ctx)
}
