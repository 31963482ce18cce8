package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/badgeoverlay/web/components"
)

// GenericToast returns a Toast component rendered as HTML for HTMX swaps.
// The page uses it to surface upload and download failures.
func (h *Handler) GenericToast(c *gin.Context) {
	title := c.PostForm("title")
	description := c.PostForm("description")
	v := components.ParseVariant(c.PostForm("variant"))
	dismissible := c.PostForm("dismissible") == "on"

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)

	err := components.Toast(components.ToastProps{
		Title:       title,
		Description: description,
		Variant:     v,
		Duration:    4000,
		Dismissible: dismissible,
	}).Render(c.Request.Context(), c.Writer)
	if err != nil {
		h.logger.Warn("toast render failed", "error", err)
	}
}
