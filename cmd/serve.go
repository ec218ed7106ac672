package cmd

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"pricepeek/config"
	"pricepeek/handlers"
	"pricepeek/middleware"
	"pricepeek/sink"
)

var Serve = &cobra.Command{
	Use:   "serve",
	Short: "serves extractions over HTTP",
	Long:  "serves POST /api/v1/extract and, with a database, GET /api/v1/history",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

func serve(cmd *cobra.Command, args []string) error {
	a, err := newApp(config.Load())
	if err != nil {
		return err
	}

	var recorder sink.Sink
	if recs := a.recorders(); len(recs) > 0 {
		recorder = sink.NewMulti(a.log, recs[0], recs[1:]...)
	}
	defer a.close(recorder)

	// A nil *CheckRepository must not become a non-nil interface.
	var history handlers.HistoryStore
	if a.checks != nil {
		history = a.checks
	}

	h := handlers.NewHandlers(a.extractor, recorder, history, a.style, a.log)
	return http.ListenAndServe(a.cfg.Server.Addr(), newRouter(a.cfg.Server, h, a))
}

func newRouter(cfg config.ServerConfig, h *handlers.Handlers, a *app) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware(a.log))
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerSecond))
	r.Use(middleware.APIKeyMiddleware(cfg.APIKey))
	h.Routes(r)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	a.log.WithField("addr", cfg.Addr()).Info("🌐 Server starting")
	a.log.Info("   GET  /health - Health check")
	a.log.Info("   POST /api/v1/extract - Extract one URL")
	a.log.Info("   GET  /api/v1/history - Recorded checks")
	return c.Handler(r)
}
