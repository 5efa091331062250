package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roasbeef/elucidate/internal/diary"
	"github.com/roasbeef/elucidate/internal/interpret"
	"github.com/roasbeef/elucidate/internal/session"
	"github.com/roasbeef/elucidate/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the questionnaire web server",
	RunE:  runServe,
}

// apiKeyFromEnv reads the generation service credential, preferring the
// app-specific variable.
func apiKeyFromEnv() string {
	if key := os.Getenv("ELUCIDATE_OPENAI_API_KEY"); key != "" {
		return key
	}

	return os.Getenv("OPENAI_API_KEY")
}

// runServe wires the stores, interpretation pipeline, and web server
// together, then serves until interrupted.
func runServe(cmd *cobra.Command, _ []string) error {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	client, err := interpret.NewClient(interpret.ClientConfig{
		APIKey: apiKeyFromEnv(),
	})
	if err != nil {
		return err
	}

	// Diary entries persist across restarts; everything else is process
	// memory.
	diaryPath := dbPath
	if diaryPath == "" {
		diaryPath, err = diary.DefaultDBPath()
		if err != nil {
			return err
		}
	}
	diaryStore, err := diary.Open(diaryPath, log)
	if err != nil {
		return err
	}
	defer diaryStore.Close()

	sessions := session.NewMemoryStore(session.DefaultSessionTTL, log)
	defer sessions.Close()

	svc := interpret.NewService(
		client, interpret.NewCache(
			interpret.DefaultCacheTTL, interpret.DefaultCacheCapacity,
		), log,
	)
	jobs := interpret.NewManager(svc, log)
	defer jobs.Close()

	cfg := web.DefaultConfig()
	cfg.Addr = addr
	cfg.SecretKey = os.Getenv("ELUCIDATE_SECRET_KEY")
	if cfg.SecretKey == "" {
		log.Warn("ELUCIDATE_SECRET_KEY not set; sessions will not " +
			"survive a restart")
	}

	server, err := web.NewServer(cfg, sessions, svc, jobs, diaryStore, log)
	if err != nil {
		return err
	}

	// Shut down cleanly on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("Shutting down...")
		server.Shutdown(context.Background())
	}()

	log.Info("Starting elucidated", "addr", addr, "db", diaryPath)
	if err := server.Start(); err != nil &&
		!errors.Is(err, http.ErrServerClosed) {

		return err
	}

	return nil
}
