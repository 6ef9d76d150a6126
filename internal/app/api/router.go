// Package api exposes the overlay pipeline over HTTP: host event delivery,
// state inspection, and a websocket stream of normalized events.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"overlay/internal/app/processor"
	"overlay/internal/app/state"
	"overlay/pkg/slg"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	Port    int           `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

type API struct {
	logger *slog.Logger

	cfg *Config

	processor *processor.Processor
	state     *state.State
}

func NewAPI(cfg *Config, logger *slog.Logger, proc *processor.Processor, st *state.State) *API {
	return &API{
		cfg: cfg,

		logger: logger,

		processor: proc,
		state:     st,
	}
}

func (api *API) NewRouter() *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(api.slogMiddleware)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.StripSlashes)

	router.Use(middleware.Recoverer)

	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api", func(router chi.Router) {
		router.Post("/events", api.handleEvent)
		router.Post("/load", api.handleLoad)
		router.Get("/state", api.handleState)
		router.Patch("/state", api.handlePatchState)
	})

	router.Get("/ws", api.handleWS)

	return router
}

func (api *API) slogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := api.logger.With("request_id", middleware.GetReqID(r.Context()))

		next.ServeHTTP(w, r.WithContext(slg.WithSlog(r.Context(), logger)))
	})
}

// Run serves until ctx is done, then shuts the server down gracefully.
func (api *API) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", api.cfg.Port),
		Handler:     api.NewRouter(),
		ReadTimeout: api.cfg.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	api.logger.Info("serving overlay api", "port", api.cfg.Port)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
