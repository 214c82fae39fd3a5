// Package cli provides the cobra-based command line for the bookstore.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bookstore/internal/config"
	"bookstore/internal/metrics"
	"bookstore/internal/repos"
	"bookstore/internal/services"
	"bookstore/internal/storage"
	"bookstore/internal/store"
)

// env is everything a command needs, opened once per invocation.
type env struct {
	cfg      config.Config
	db       *sqlx.DB
	catalog  *services.CatalogService
	sessions *services.SessionService
	reg      *prometheus.Registry
	logFile  *os.File
	prevLog  io.Writer
}

func openEnv(cfg config.Config) (_ *env, err error) {
	e := &env{cfg: cfg, reg: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			_ = e.close()
		}
	}()

	// Optional file logging
	if cfg.LogFile != "" {
		f, ferr := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if ferr != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, ferr)
		} else {
			e.prevLog = log.Writer()
			log.SetOutput(io.MultiWriter(e.prevLog, f))
			e.logFile = f
		}
	}

	if e.db, err = repos.OpenDB(cfg.DBDSN); err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	e.catalog = services.NewCatalogService(repos.NewProductRepo(e.db))
	if err = e.catalog.Load(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	kv, err := storage.New(cfg.Storage, storage.Options{
		DB:         e.db,
		File:       cfg.StorageFile,
		S3Bucket:   cfg.S3Bucket,
		S3Prefix:   cfg.S3Prefix,
		S3Region:   cfg.S3Region,
		S3Endpoint: cfg.S3Endpoint,
	})
	if err != nil {
		return nil, err
	}

	e.reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	e.sessions = services.NewSessionService(kv, e.catalog, metrics.New(e.reg), services.SessionConfig{
		MaxSessions: cfg.MaxSessions,
		IdleTTL:     cfg.SessionTTL,
	})
	return e, nil
}

// close flushes every session store before the database goes away, then
// puts the standard logger back on its previous output. It also releases a
// partially opened env.
func (e *env) close() error {
	if e == nil {
		return nil
	}
	var err error
	if e.sessions != nil {
		err = e.sessions.Close()
	}
	if e.db != nil {
		if cerr := e.db.Close(); err == nil {
			err = cerr
		}
	}
	if e.logFile != nil {
		log.SetOutput(e.prevLog)
		e.logFile.Close()
		e.logFile = nil
	}
	return err
}

// store returns the configured CLI session's store.
func (e *env) store(ctx context.Context) (*store.Store, error) {
	return e.sessions.Store(ctx, e.cfg.Session)
}

type app struct {
	v   *viper.Viper
	env *env
}

func newApp() *app {
	v := viper.New()
	config.Defaults(v)
	return &app{v: v}
}

func (a *app) close() error {
	err := a.env.close()
	a.env = nil
	return err
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bookstore",
		Short:         "Bookstore storefront: web server and session state tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v)
			if err != nil {
				return err
			}
			a.env, err = openEnv(cfg)
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file")
	pf.String("port", "8080", "HTTP port")
	pf.String("db-dsn", "bookstore.db", "sqlite database")
	pf.String("storage", "sqlite", "state storage: sqlite|file|memory|s3")
	pf.String("storage-file", "data/state.json", "file storage path")
	pf.String("s3-bucket", "", "s3 bucket")
	pf.String("s3-prefix", "bookstore/", "s3 key prefix")
	pf.String("s3-region", "us-east-1", "s3 region")
	pf.String("s3-endpoint", "", "s3 endpoint override")
	pf.String("log-file", "", "also append logs to this file")
	pf.String("session", "cli", "session id the state commands act on")
	pf.Int("max-sessions", 10000, "open session stores kept in memory")
	pf.Duration("session-ttl", 30*time.Minute, "close session stores idle this long")
	for _, name := range []string{"config", "port", "db-dsn", "storage", "storage-file", "s3-bucket", "s3-prefix", "s3-region", "s3-endpoint", "log-file", "session", "max-sessions", "session-ttl"} {
		_ = a.v.BindPFlag(name, pf.Lookup(name))
	}

	root.AddCommand(
		a.serveCmd(),
		a.stateCmd(),
		a.productsCmd(),
		a.cartCmd(),
		a.wishlistCmd(),
		a.loginCmd(),
		a.logoutCmd(),
	)
	return root
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// Execute runs the command line and always releases what it opened.
func Execute() error {
	a := newApp()
	err := a.rootCmd().Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}
