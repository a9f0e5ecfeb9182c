package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	bolt "go.etcd.io/bbolt"

	"call-rewind-go/internal/api"
	"call-rewind-go/internal/auth"
	"call-rewind-go/internal/cache"
	"call-rewind-go/internal/config"
	"call-rewind-go/internal/history"
	"call-rewind-go/internal/logger"
	"call-rewind-go/internal/share"
	"call-rewind-go/internal/sipgate"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "call-rewind-go").Info("starting service")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	db, err := bolt.Open(cfg.ShareDBPath, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		log.WithError(err).WithField("path", cfg.ShareDBPath).Fatal("failed to open share database")
	}
	defer db.Close()

	shares, err := share.NewBoltStore(db)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize share store")
	}

	var reviewCache *cache.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.WithError(err).Warn("redis unreachable, serving without review cache")
		} else {
			reviewCache = cache.New(rdb, cfg.ReviewCacheTTL)
			log.WithField("addr", cfg.RedisAddr).Info("review cache enabled")
		}
	}

	oauth := auth.NewClient(auth.Config{
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		AuthURL:      cfg.OAuthAuthURL,
		TokenURL:     cfg.OAuthTokenURL,
		UserinfoURL:  cfg.OAuthUserinfoURL,
		RedirectURL:  cfg.RedirectURL(),
		Scope:        cfg.OAuthScope,
	})
	sessions := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL)
	builder := history.NewBuilder(sipgate.NewClient(cfg.SipgateAPIURL))

	handler := api.NewHandler(builder, shares, reviewCache, sessions, oauth, cfg.PublicBaseURL)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(handler, sessions, oauth),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown incomplete")
	}
}
