// Command sentineld runs the HTTP audit façade: wires configuration,
// the constitution, the auditor, an optional LLM auditor, and the
// process logger into a long-running server with graceful shutdown.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/taajirah/sentinel/internal/auditor"
	"github.com/taajirah/sentinel/internal/config"
	"github.com/taajirah/sentinel/internal/constitution"
	"github.com/taajirah/sentinel/internal/llmauditor"
	"github.com/taajirah/sentinel/internal/logger"
	"github.com/taajirah/sentinel/internal/server"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("sentineld exited")
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	policy, err := constitution.Load(cfg.ConstitutionPath)
	if err != nil {
		return fmt.Errorf("load constitution: %w", err)
	}

	llm := llmauditor.FromConfig(cfg.LLMEndpoint, cfg.LLMModel, cfg.LLMTimeout)
	switch {
	case cfg.LLMEndpoint != "":
		log.Info().Str("endpoint", cfg.LLMEndpoint).Str("model", cfg.LLMModel).Msg("using HTTP LLM auditor")
	case cfg.LLMModel != "":
		log.Info().Str("model", cfg.LLMModel).Msg("using built-in heuristic auditor")
	default:
		log.Warn().Msg("no LLM auditor configured; unaudited commands will fail closed")
	}

	a := auditor.New(policy, llm)

	auditLog, err := logger.New(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer auditLog.Close()

	srv := server.New(server.Config{
		Addr:            net.JoinHostPort("0.0.0.0", strconv.Itoa(cfg.Port)),
		AuthToken:       cfg.AuthToken,
		RequireAuth:     cfg.RequiresAuth(),
		ExecutorTimeout: cfg.ExecutorTimeout,
	}, a, auditLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
