package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"

	"sat-practice-service/internal/app"
	"sat-practice-service/internal/config"
	"sat-practice-service/internal/domain"
	"sat-practice-service/internal/infra/file"
	"sat-practice-service/internal/infra/memory"
	pgloader "sat-practice-service/internal/infra/postgres"
	redissession "sat-practice-service/internal/infra/redis"
	"sat-practice-service/internal/infra/sqlstore"
	"sat-practice-service/internal/infra/sqlstore/migrations"
	transport "sat-practice-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the practice server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	log := newLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	var (
		bank        *domain.Bank
		db          *bun.DB
		redisClient *redis.Client
	)

	// The bank, the account store and the session store come up independently;
	// any failure aborts startup.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loaded, err := loadBank(gctx, cfg)
		if err != nil {
			return err
		}
		bank = loaded
		return nil
	})
	g.Go(func() error {
		opened, err := openDatabase(gctx, cfg)
		if err != nil {
			return err
		}
		db = opened
		return nil
	})
	g.Go(func() error {
		client, err := openRedis(gctx, cfg)
		if err != nil {
			return err
		}
		redisClient = client
		return nil
	})
	err = g.Wait()
	if db != nil {
		defer db.Close()
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	if err != nil {
		return err
	}

	for _, id := range bank.DuplicateIDs() {
		log.WithField("id", id).Warn("question id appears more than once; first occurrence wins when scoring")
	}
	log.WithFields(logrus.Fields{
		"topics":    len(bank.Topics()),
		"questions": bank.Len(),
	}).Info("question bank loaded")

	var accounts app.AccountRepository
	if db != nil {
		accounts = sqlstore.NewAccountStore(db)
	} else {
		log.Warn("no database url configured; accounts are kept in memory")
		accounts = memory.NewAccountStore()
	}

	sessionTTL := config.TTLDuration(cfg.Session.TTL, 24*time.Hour)
	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redissession.NewSessionStore(redisClient, sessionTTL)
	} else {
		sessions = memory.NewSessionStore(sessionTTL)
	}

	handler := transport.NewHandler(
		app.NewAccountService(accounts, app.BcryptHasher{}),
		app.NewPracticeService(bank, app.NewSelector(bank), accounts),
		sessions,
		transport.Options{
			CookieName: cfg.Session.Cookie,
			SecretKey:  []byte(cfg.Server.SecretKey),
			Secure:     cfg.Session.Secure,
			SessionTTL: sessionTTL,
		},
		log,
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("port", finalPort).Info("starting practice server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	case err := <-serveErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func loadBank(ctx context.Context, cfg config.Config) (*domain.Bank, error) {
	if cfg.Questions.Source != config.SourcePostgres {
		return file.NewBankLoader(cfg.Questions.Path).LoadBank(ctx)
	}
	driver, err := sqlstore.DriverFor(cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if driver != sqlstore.DriverPostgres {
		return nil, errors.New("questions.source=postgres needs a postgres database url")
	}
	pool, err := pgxpool.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	defer pool.Close()
	return pgloader.NewBankLoader(pool, cfg.Questions.Name).LoadBank(ctx)
}

// openDatabase returns nil when no database url is configured.
func openDatabase(ctx context.Context, cfg config.Config) (*bun.DB, error) {
	if cfg.Database.URL == "" {
		return nil, nil
	}
	db, err := sqlstore.Open(cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := migrations.Apply(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// openRedis returns nil when neither redis.url nor redis.addr is configured.
func openRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	var opts *redis.Options
	switch {
	case cfg.Redis.URL != "":
		parsed, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		opts = parsed
	case cfg.Redis.Addr != "":
		opts = &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
	default:
		return nil, nil
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
