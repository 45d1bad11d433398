package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bromosky/aventra/api"
	"github.com/bromosky/aventra/config"
	"github.com/bromosky/aventra/internal/middleware"
	"github.com/bromosky/aventra/web"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Booking *api.BookingHandler
	Admin   *api.AdminHandler
	Catalog *api.CatalogHandler
}

// NewRouter wires middleware, views, static uploads and every route.
func NewRouter(cfg *config.Config, logger *slog.Logger, h Handlers) (*gin.Engine, error) {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.StructuredLogger(logger), middleware.Recovery(logger))
	router.SetHTMLTemplate(tmpl)
	router.MaxMultipartMemory = cfg.Upload.MaxBytes + 1<<20
	router.Static(cfg.Upload.URLPrefix, cfg.Upload.Dir)

	h.Booking.Register(router.Group("/"))
	h.Admin.Register(router.Group("/"))

	apiGroup := router.Group("/api", cors.New(corsConfig(cfg.HTTP.CORSOrigins)))
	h.Catalog.Register(apiGroup)

	router.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Halaman tidak ditemukan.")
	})
	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Run serves handler on the configured address and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTP.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen http %s: %w", cfg.HTTP.Address, err)
	case <-ctx.Done():
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
