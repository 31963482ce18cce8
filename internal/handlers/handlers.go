package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/badgeoverlay/internal/asset"
	"github.com/cristianadrielbraun/badgeoverlay/internal/config"
	"github.com/cristianadrielbraun/badgeoverlay/internal/session"
)

// SessionCookie names the cookie carrying the visitor's session id.
const SessionCookie = "badge_session"

// Handler carries the dependencies shared by the HTTP handlers.
type Handler struct {
	cfg      *config.Config
	sessions *session.Store
	overlay  *asset.Pending
	logger   *slog.Logger
}

// New returns a new Handler instance.
func New(cfg *config.Config, sessions *session.Store, overlay *asset.Pending, logger *slog.Logger) *Handler {
	return &Handler{cfg: cfg, sessions: sessions, overlay: overlay, logger: logger}
}

// Register mounts the API routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/sitemap.xml", h.SitemapXML)
	api := r.Group("/api")
	{
		api.POST("/photo", h.UploadPhoto)
		api.POST("/pointer", h.Pointer)
		api.POST("/key", h.Key)
		api.GET("/state", h.State)
		api.GET("/canvas", h.Canvas)
		api.GET("/download", h.Download)
		api.POST("/htmx/toast", h.GenericToast)
	}
}

// session returns the caller's session, creating one (and setting the cookie)
// when create is true.
func (h *Handler) session(c *gin.Context, create bool) (*session.Session, bool) {
	id, _ := c.Cookie(SessionCookie)
	if !create {
		return h.sessions.Get(id)
	}
	s, created := h.sessions.GetOrCreate(id)
	if created {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, s.ID, 0, "/", "", c.Request.TLS != nil, true)
		h.logger.Debug("session created", "session", s.ID)
	}
	return s, true
}

// SitemapXML serves a minimal sitemap for the site.
func (h *Handler) SitemapXML(c *gin.Context) {
	c.Header("Content-Type", "application/xml; charset=utf-8")
	scheme := "https"
	host := c.Request.Host
	if xf := c.Request.Header.Get("X-Forwarded-Proto"); xf != "" {
		scheme = xf
	} else if c.Request.TLS == nil {
		scheme = "http"
	}
	base := scheme + "://" + host
	xml := "" +
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		"<urlset xmlns=\"http://www.sitemaps.org/schemas/sitemap/0.9\">\n" +
		"  <url>\n" +
		"    <loc>" + base + "/" + "</loc>\n" +
		"    <changefreq>monthly</changefreq>\n" +
		"    <priority>1.0</priority>\n" +
		"  </url>\n" +
		"</urlset>\n"
	c.String(http.StatusOK, xml)
}
