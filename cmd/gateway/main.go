package main

import (
	"flag"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/overplay/spotify-broker/internal/auth/spotify"
	"github.com/overplay/spotify-broker/internal/auth/token"
	"github.com/overplay/spotify-broker/internal/config"
	"github.com/overplay/spotify-broker/internal/db"
	"github.com/overplay/spotify-broker/internal/lock"
	"github.com/overplay/spotify-broker/internal/proxy/handlers"
	"github.com/overplay/spotify-broker/internal/proxy/middleware"
	"github.com/overplay/spotify-broker/internal/secrets"
	"github.com/overplay/spotify-broker/internal/upstream"
	"github.com/overplay/spotify-broker/internal/version"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("load configuration", zap.Error(err))
	}

	key, err := secrets.KeyFromHex(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal("decode encryption key", zap.Error(err))
	}
	codec, err := secrets.NewCodec(key)
	if err != nil {
		logger.Fatal("init secret codec", zap.Error(err))
	}

	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	store := db.NewStore(database)

	// The lock backend is a deployment decision; the broker only sees the
	// KeyedLock interface.
	var locks lock.KeyedLock
	switch cfg.Lock.Backend {
	case config.LockBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Lock.RedisAddr,
			Password: cfg.Lock.RedisPassword,
		})
		locks = lock.NewRedis(rdb, cfg.Lock.LeaseTTL.Std())
	default:
		locks = lock.NewMemory()
	}

	oauthCfg := spotify.OAuthConfig(cfg.Provider.ClientID, cfg.Provider.ClientSecret, cfg.Provider.TokenURL)
	broker := token.NewBroker(store, codec, locks, oauthCfg, logger, token.Options{
		ExpiryBuffer:   cfg.ExpiryBuffer.Std(),
		RefreshTimeout: cfg.RefreshTimeout.Std(),
	})
	client := upstream.NewClient(broker, cfg.Provider.APIBaseURL, cfg.RequestTimeout.Std(), logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(logger))

	r.Get("/healthz", handlers.HealthHandler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.APIKey))

		r.Get("/credential/{ownerID}", handlers.CredentialHandler(broker))
		r.Post("/credential/{ownerID}/refresh", handlers.ForceRefreshHandler(broker))
		r.Post("/accounts/{id}/revoke", handlers.RevokeAccountHandler(store))

		r.Route("/player/{ownerID}", func(r chi.Router) {
			r.Get("/", handlers.PlayerStateHandler(client))
			r.Put("/play", handlers.PlayHandler(client))
			r.Put("/pause", handlers.PauseHandler(client))
			r.Post("/next", handlers.NextHandler(client))
			r.Post("/previous", handlers.PreviousHandler(client))
			r.Put("/seek", handlers.SeekHandler(client))
			r.Put("/transfer", handlers.TransferHandler(client))
			r.Get("/recommendations", handlers.RecommendationsHandler(client))
			r.Post("/queue", handlers.QueueHandler(client))
		})
	})

	logger.Info("spotify-broker starting",
		zap.String("addr", cfg.ListenAddr),
		zap.String("lock_backend", cfg.Lock.Backend),
		zap.String("version", version.Version))

	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
