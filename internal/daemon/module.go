package daemon

import (
	"context"
	"path/filepath"
	"time"

	"github.com/kataras/iris/v12"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/matheus3301/wppclone/internal/bus"
	"github.com/matheus3301/wppclone/internal/config"
	"github.com/matheus3301/wppclone/internal/lock"
	"github.com/matheus3301/wppclone/internal/logging"
	"github.com/matheus3301/wppclone/internal/receipts"
	"github.com/matheus3301/wppclone/internal/server"
	"github.com/matheus3301/wppclone/internal/session"
	"github.com/matheus3301/wppclone/internal/store"
)

// DefaultAddr is where the development backend listens unless overridden.
const DefaultAddr = "127.0.0.1:8080"

// Params holds the resolved backend configuration passed to the fx module.
type Params struct {
	SessionName string
	DataDir     string // optional override for testing; empty = session backend dir
	Addr        string // empty = DefaultAddr
	SelfID      string
	// ReceiptDelay is how long an own message stays in each status before
	// the advancer moves it on. Zero uses receipts.DefaultDelay.
	ReceiptDelay time.Duration
	Stderr       bool
}

func (p Params) dataDir() string {
	if p.DataDir != "" {
		return p.DataDir
	}
	return session.BackendDir(p.SessionName)
}

// Module returns the fx module for the backend, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideAdvancer,
			provideHandler,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(session.LogPath(p.SessionName, "wppd"), p.SessionName, p.Stderr)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	dir := p.dataDir()
	logger.Info("acquiring data dir lock", zap.String("dir", dir))
	l, err := lock.Acquire(dir)
	if err != nil {
		return nil, err
	}
	logger.Info("data dir lock acquired")
	return l, nil
}

// provideStore depends on the lock so the database is only opened by its owner.
func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := filepath.Join(p.dataDir(), "wppd.db")
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideAdvancer(p Params, db *store.DB, b *bus.Bus, logger *zap.Logger) *receipts.Advancer {
	delay := p.ReceiptDelay
	if delay == 0 {
		delay = receipts.DefaultDelay
	}
	return receipts.NewAdvancer(db, selfID(p), receipts.DefaultInterval, delay, b, logger.Named("receipts"))
}

func provideHandler(p Params, db *store.DB, b *bus.Bus, logger *zap.Logger) (*iris.Application, error) {
	return server.New(db, server.Options{
		SelfID: selfID(p),
		Bus:    b,
		Logger: logger.Named("http"),
	})
}

func selfID(p Params) string {
	if p.SelfID == "" {
		return config.DefaultSelfID
	}
	return p.SelfID
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, lk *lock.Lock, db *store.DB, advancer *receipts.Advancer, b *bus.Bus, logger *zap.Logger) {
	events, unsubscribe := b.Subscribe("backend.", 64)
	stopEvents := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				for {
					select {
					case evt := <-events:
						logger.Debug("event", zap.String("kind", evt.Kind), zap.Any("payload", evt.Payload))
					case <-stopEvents:
						return
					}
				}
			}()

			// Start HTTP server in background.
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("HTTP server error", zap.Error(err))
				}
			}()
			if err := lk.SetAddr(srv.Addr()); err != nil {
				logger.Warn("could not record address in lock file", zap.Error(err))
			}

			advancer.Start(context.Background())
			logger.Info("backend ready", zap.String("addr", srv.Addr()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			srv.Stop(ctx)
			advancer.Stop()
			unsubscribe()
			close(stopEvents)
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("backend stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
