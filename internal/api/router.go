package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/examiner/internal/api/handlers"
	"github.com/nikhilbhutani/examiner/internal/api/middleware"
	"github.com/nikhilbhutani/examiner/internal/llm"
)

// Deps are the services the router exposes. Optional stores are left nil
// when they are not configured.
type Deps struct {
	Processor          handlers.TurnProcessor
	Gateway            llm.Gateway
	MissingCredentials []string
	Stats              handlers.StatsReader
	Usage              handlers.UsageReader
	// Checks are pinged by /readyz, keyed by name.
	Checks    map[string]handlers.Pinger
	StaticDir string
}

type Router struct {
	mux  *chi.Mux
	deps Deps
}

func NewRouter(deps Deps) *Router {
	if deps.StaticDir == "" {
		deps.StaticDir = "static"
	}
	return &Router{
		mux:  chi.NewRouter(),
		deps: deps,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	health := handlers.NewHealthHandler(rt.deps.MissingCredentials, rt.deps.Checks)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Client
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/static/index.html", http.StatusTemporaryRedirect)
	})
	fs := http.StripPrefix("/static/", http.FileServer(http.Dir(rt.deps.StaticDir)))
	r.Get("/static/*", fs.ServeHTTP)

	turnH := handlers.NewTurnHandler(rt.deps.Processor)
	r.Post("/process-audio", turnH.ProcessAudio)

	statsH := handlers.NewStatsHandler(rt.deps.Stats)
	r.Get("/stats", statsH.Counters)

	modelsH := handlers.NewModelsHandler(rt.deps.Gateway)
	r.Get("/models", modelsH.Models)

	usageH := handlers.NewUsageHandler(rt.deps.Usage)
	r.Route("/usage", func(r chi.Router) {
		r.Get("/", usageH.Summary)
		r.Get("/turns", usageH.Turns)
	})

	return r
}
