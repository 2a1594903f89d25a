package cli

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

	"github.com/spf13/cobra"

	"github.com/taajirah/sentinel/internal/auditor"
	"github.com/taajirah/sentinel/internal/config"
	"github.com/taajirah/sentinel/internal/constitution"
	"github.com/taajirah/sentinel/internal/llmauditor"
	"github.com/taajirah/sentinel/internal/logger"
	"github.com/taajirah/sentinel/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sentinel HTTP audit façade",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default: SENTINEL_PORT or 8765)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if constitutionPath != "" {
		cfg.ConstitutionPath = constitutionPath
	}
	if logPath != "" {
		cfg.LogPath = logPath
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	policy, err := constitution.Load(cfg.ConstitutionPath)
	if err != nil {
		return fmt.Errorf("load constitution: %w", err)
	}

	llm := llmauditor.FromConfig(cfg.LLMEndpoint, cfg.LLMModel, cfg.LLMTimeout)

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
	go func() { serveErr <- srv.ListenAndServe() }()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
