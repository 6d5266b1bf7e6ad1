package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chitfund/internal/adapters/archive"
	"chitfund/internal/adapters/docstore"
	"chitfund/internal/adapters/email"
	web "chitfund/internal/adapters/http"
	"chitfund/internal/adapters/http/perf"
	"chitfund/internal/adapters/metrics"
	accountStore "chitfund/internal/adapters/storage/account"
	listStore "chitfund/internal/adapters/storage/list"
	memberStore "chitfund/internal/adapters/storage/member"
	schemeStore "chitfund/internal/adapters/storage/scheme"
	"chitfund/internal/application/console"
	"chitfund/internal/application/orchestrators"
	"chitfund/internal/config"
	domain "chitfund/internal/domain/account"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin console HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := perf.NewCollector(perf.DefaultRingSize)
	handle, err := docstore.Open(ctx, docstore.Options{
		Backend:   cfg.StoreDriver,
		DSN:       cfg.StoreDSN,
		Collector: collector,
		SlowQuery: cfg.SlowQuery,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer handle.Close()

	creds, err := loadCredentials(cfg)
	if err != nil {
		return err
	}
	archiver, err := newArchiver(ctx, cfg)
	if err != nil {
		return err
	}

	m := metrics.New()
	client := handle.Client
	srv, err := web.NewServer(web.Deps{
		Members:  memberStore.NewDocStore(client, m),
		Lists:    listStore.NewDocStore(client, m),
		Consoles: console.NewRegistry(func() *console.Console {
			return console.New(schemeStore.NewCache(client, m))
		}),
		Authenticator: creds,
		LoginDelay:    orchestrators.LoginDelay{Min: cfg.LoginDelayMin, Max: cfg.LoginDelayMax},
		Sender:        newSender(cfg),
		ReportFrom:    cfg.ReportFrom,
		ReportTo:      cfg.ReportTo,
		Archiver:      archiver,
		Metrics:       m,
		Collector:     collector,
		Ping:          handle.Ping,
	}, web.Options{
		CSRFKey:     cfg.CSRFKey,
		Secure:      cfg.IsProduction(),
		SlowRequest: cfg.SlowRequest,
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func loadCredentials(cfg config.Config) (*domain.CredentialTable, error) {
	if cfg.CredentialsFile == "" {
		if cfg.IsProduction() {
			slog.Warn("default_credentials_in_use", "hint", "set CHITFUND_CREDENTIALS_FILE")
		}
		return accountStore.Default()
	}
	creds, err := accountStore.LoadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	return creds, nil
}

func newSender(cfg config.Config) email.Sender {
	if cfg.ResendKey == "" {
		slog.Info("email_sender_configured", "sender", "noop")
		return email.NewNoopSender()
	}
	slog.Info("email_sender_configured", "sender", "resend")
	return email.NewResendSender(cfg.ResendKey, cfg.ReportFrom)
}

func newArchiver(ctx context.Context, cfg config.Config) (orchestrators.ReportArchiver, error) {
	if !cfg.Archive.Enabled() {
		return archive.NoopArchiver{}, nil
	}
	a, err := archive.NewS3(ctx, archive.S3Config{
		Bucket:    cfg.Archive.Bucket,
		Region:    cfg.Archive.Region,
		Endpoint:  cfg.Archive.Endpoint,
		PathStyle: cfg.Archive.PathStyle,
		Prefix:    cfg.Archive.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("configure archive: %w", err)
	}
	return a, nil
}
