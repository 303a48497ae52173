package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
	"you-sub/internal/config"
	"you-sub/internal/db"
	"you-sub/internal/handlers"
	"you-sub/internal/middleware"
	"you-sub/internal/reconcile"
	"you-sub/internal/view"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	cfg, err := config.NewConfigFromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db.InitDB(cfg.DatabaseURL)
	if err := db.Migrate(context.Background()); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	client := asynq.NewClient(redisOpt)
	defer client.Close()
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	h := handlers.New(
		reconcile.New(db.NewStore()),
		view.NewBuilder(cfg.LocaleTag()),
		client,
		inspector,
		handlers.Options{
			BaseURL:       cfg.BaseURL,
			SyncTimeout:   cfg.SyncTimeout,
			SyncRetention: cfg.SyncRetention,
		},
	)
	limiter := middleware.NewRateLimiterMiddleware(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	log.Printf("Starting server on :%s\n", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, newRouter(h, limiter)); err != nil {
		log.Fatal(err)
	}
}

func newRouter(h *handlers.Handlers, limiter *middleware.RateLimiterMiddleware) *mux.Router {
	r := mux.NewRouter()
	r.UseEncodedPath()
	r.Use(limiter.Middleware)

	r.HandleFunc("/groups", h.GetGroups).Methods(http.MethodGet)
	r.HandleFunc("/groups", h.PostGroup).Methods(http.MethodPost)
	r.HandleFunc("/groups/{name}", h.DeleteGroup).Methods(http.MethodDelete)
	r.HandleFunc("/groups/{name}/rss", h.GetGroupRSS).Methods(http.MethodGet)
	r.HandleFunc("/subscriptions/{channelId}/group", h.PutSubscriptionGroup).Methods(http.MethodPut)
	r.HandleFunc("/sync", h.PostSync).Methods(http.MethodPost)
	r.HandleFunc("/sync/{id}", h.GetSync).Methods(http.MethodGet)

	return r
}
