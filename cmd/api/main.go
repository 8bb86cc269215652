package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/database"
	"github.com/librisapp/libris/pkg/mailer"
	"github.com/librisapp/libris/pkg/migrations"
	"github.com/librisapp/libris/pkg/objectstore"
	"github.com/librisapp/libris/pkg/server"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting libris")

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	if cfg.SentryDSN != "" {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		})
		if err != nil {
			log.Err(err).Fatal("sentry error")
		}
		defer sentry.Flush(2 * time.Second)
		log.Info("sentry initialized")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	store, err := objectstore.New(ctx, cfg)
	if err != nil {
		log.Err(err).Fatal("object storage error")
	}
	log.Info("object storage ready", logger.Data{"driver": cfg.ObjectStorageDriver})

	mail, err := mailer.New(cfg)
	if err != nil {
		log.Err(err).Fatal("mailer error")
	}

	providers, err := auth.SetupProviders(cfg)
	if err != nil {
		log.Err(err).Fatal("oauth error")
	}
	log.Info("oauth providers registered", logger.Data{"providers": providers})

	srv, err := server.New(cfg, db, server.Dependencies{
		Store:  store,
		Mailer: mail,
	})
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", srv.Addr)
		if err != nil {
			log.Err(err).Fatal("failed to bind port")
		}
		log.Info("server started", logger.Data{"addr": listener.Addr().String()})

		err = srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}
