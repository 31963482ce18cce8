package main

//go:generate templ generate

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/cristianadrielbraun/badgeoverlay/internal/asset"
	"github.com/cristianadrielbraun/badgeoverlay/internal/config"
	"github.com/cristianadrielbraun/badgeoverlay/internal/geometry"
	"github.com/cristianadrielbraun/badgeoverlay/internal/handlers"
	"github.com/cristianadrielbraun/badgeoverlay/internal/interaction"
	"github.com/cristianadrielbraun/badgeoverlay/internal/session"
	"github.com/cristianadrielbraun/badgeoverlay/web/components"
	"github.com/cristianadrielbraun/badgeoverlay/web/pages"
	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := flag.String("config", "", "path to JSON config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	if err != nil {
		logger.Error("config", "path", *cfgPath, "error", err)
		os.Exit(1)
	}

	// The badge loads once; uploads wait on it.
	overlay := asset.StartOverlay(cfg.OverlayPath, cfg.OverlayWidth)
	go func() {
		img, err := overlay.Wait(context.Background())
		if err != nil {
			logger.Error("overlay failed to load; composites will have no badge", "path", cfg.OverlayPath, "error", err)
			return
		}
		logger.Info("overlay loaded", "size", img.Bounds().Size())
	}()

	store, err := session.NewStore(cfg.MaxSessions, cfg.MaxPixels, overlay, optionsFrom(cfg), logger)
	if err != nil {
		logger.Error("session store", "error", err)
		os.Exit(1)
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// Static assets
	r.Static("/web/static", "web/static")

	h := handlers.New(cfg, store, overlay, logger)
	h.Register(r)

	page := components.PageData{
		Title:          "Badge your photo",
		ExportFilename: cfg.ExportFilename,
		NudgeStep:      cfg.NudgeStep,
		NudgeStepFast:  cfg.NudgeStepFast,
	}
	r.GET("/", func(c *gin.Context) {
		if err := pages.HomePage(page).Render(c.Request.Context(), c.Writer); err != nil {
			c.String(500, err.Error())
		}
	})

	logger.Info("badgeoverlay listening", "addr", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func optionsFrom(cfg *config.Config) interaction.Options {
	return interaction.Options{
		Params: geometry.Params{
			WidthRatio:   cfg.OverlayWidthRatio,
			BasePadding:  cfg.BasePaddingPx,
			PaddingRatio: cfg.PaddingRatio,
			Clamp:        cfg.ClampWithinBounds,
		},
		NudgeStep:     cfg.NudgeStep,
		NudgeStepFast: cfg.NudgeStepFast,
	}
}
