package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"zenith-sync/internal/config"
	"zenith-sync/internal/convert"
	"zenith-sync/internal/observability"
	"zenith-sync/internal/session"
	"zenith-sync/internal/storage"
	chstore "zenith-sync/internal/storage/clickhouse"
	"zenith-sync/internal/storage/memory"
	"zenith-sync/internal/storage/migrations"
	pgstore "zenith-sync/internal/storage/postgres"
	"zenith-sync/internal/transport"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to the server and synchronise until interrupted",
	Long: `Run dials the configured endpoint, subscribes feeds and accounts (and
watchlists when enabled), opens the orders of every account and records order
changes to ClickHouse when a ClickHouse DSN is configured.

Example:
  zenithsync run -c zenith.yaml`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// stores holds the storage backends selected by the config.
type stores struct {
	preferences storage.AccountGroupPreferenceStore
	audit       storage.OrderAuditStore
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stdout, "[zenithsync] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, cleanup, err := createStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	metrics := observability.NewMetrics(cfg.Metrics.Namespace)
	if cfg.Metrics.Addr != "" {
		go startMetricsServer(cfg.Metrics.Addr, logger)
	}

	tcfg := transport.DefaultConfig()
	tcfg.ReconnectDelay = cfg.Transport.ReconnectDelay
	tcfg.MaxReconnectDelay = cfg.Transport.MaxReconnectDelay
	tcfg.PingInterval = cfg.Transport.PingInterval
	tcfg.ReadTimeout = cfg.Transport.ReadTimeout
	tcfg.WriteTimeout = cfg.Transport.WriteTimeout
	tcfg.Logger = log.New(os.Stdout, "[transport] ", log.LstdFlags)
	tcfg.OnDecodeError = metrics.RecordDataError
	if cfg.AccessToken != "" {
		tcfg.Header = http.Header{"Authorization": []string{"Bearer " + cfg.AccessToken}}
	}

	logger.Printf("Connecting to %s (%s)", cfg.Endpoint, cfg.Environment)
	tr, err := transport.Dial(ctx, cfg.Endpoint, &tcfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer tr.Close()

	sess, err := session.New(session.Options{
		Transport:      tr,
		Codec:          convert.New(convert.LogWarner{Logger: logger}),
		RequestTimeout: cfg.Publisher.RequestTimeout,
		RetryDelay:     cfg.Publisher.RetryDelay,
		TickInterval:   cfg.Publisher.TickInterval,
		Watchlists:     cfg.Watchlists,
		Metrics:        metrics,
		AuditStore:     st.audit,
		Preferences:    st.preferences,
		Logger:         log.New(os.Stdout, "[session] ", log.LstdFlags),
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	err = sess.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Println("Shutdown complete")
	return nil
}

// createStores opens Postgres for group preferences when configured and
// falls back to memory. Order auditing needs ClickHouse and is off without it.
func createStores(ctx context.Context, cfg *config.Config, logger *log.Logger) (*stores, func(), error) {
	st := &stores{preferences: memory.NewAccountGroupPreferenceStore()}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Storage.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		st.preferences = pgstore.NewAccountGroupPreferenceStore(pool)
	}

	if cfg.Storage.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		closers = append(closers, func() { conn.Close() })
		st.audit = chstore.NewOrderAuditStore(conn)
	} else {
		logger.Println("No ClickHouse DSN configured, order auditing disabled")
	}

	return st, cleanup, nil
}

// startMetricsServer serves health and Prometheus metrics.
func startMetricsServer(addr string, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	logger.Printf("Starting metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("Metrics server error: %v", err)
	}
}
