package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/middleware"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/identity"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/service"
)

// MaxBodyBytes caps request bodies; a portfolio snapshot is far smaller.
const MaxBodyBytes = 1 << 20

// frontendIndex is served for "/" when present in the static directory.
const frontendIndex = "portfolio-tracker.html"

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	portfolioService *service.PortfolioService,
	marketService *service.MarketService,
	resolver identity.Resolver,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(MaxBodyBytes))

	// CORS middleware
	r.Use(custommiddleware.CORS(cfg.CORS.AllowedOrigins))

	// API routes
	r.Route("/api", func(r chi.Router) {
		systemHandler := handlers.NewSystemHandler(systemService)
		r.Get("/health", systemHandler.Health)

		marketHandler := handlers.NewMarketHandler(marketService)
		r.Get("/price/{symbol}", marketHandler.Price)
		r.Get("/history/{symbol}", marketHandler.History)

		r.Route("/portfolio", func(r chi.Router) {
			r.Use(custommiddleware.Identity(resolver))

			portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
			r.Get("/", portfolioHandler.Load)
			r.Post("/", portfolioHandler.Save)
			r.Delete("/", portfolioHandler.Delete)

			r.Get("/load", portfolioHandler.Load)
			r.Post("/save", portfolioHandler.Save)
			r.Delete("/delete", portfolioHandler.Delete)
		})
	})

	if cfg.Server.StaticDir != "" {
		r.Handle("/*", staticHandler(cfg.Server.StaticDir))
	}

	return r
}

// staticHandler serves the frontend files in dir. The root path serves the
// tracker page when it exists, otherwise the file server's index.html.
func staticHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, frontendIndex)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			if _, err := os.Stat(index); err == nil {
				http.ServeFile(w, r, index)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}
