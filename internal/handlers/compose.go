package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/badgeoverlay/internal/asset"
	"github.com/cristianadrielbraun/badgeoverlay/internal/geometry"
	"github.com/cristianadrielbraun/badgeoverlay/internal/interaction"
	"github.com/cristianadrielbraun/badgeoverlay/internal/session"
	"github.com/cristianadrielbraun/badgeoverlay/internal/surface"
)

type size struct {
	W int `json:"w"`
	H int `json:"h"`
}

type stateResponse struct {
	Loaded     bool           `json:"loaded"`
	State      string         `json:"state"`
	Rect       *geometry.Rect `json:"rect,omitempty"`
	Logical    size           `json:"logical"`
	Backing    size           `json:"backing"`
	PixelRatio float64        `json:"dpr"`
	// Changed reports whether the event moved the overlay or changed the
	// drag state; the page reloads the canvas image when it is set.
	Changed bool `json:"changed"`
	// Capture asks the page to hold pointer capture for the event's pointer.
	Capture bool `json:"capture"`
}

func snapshot(s *session.Session) stateResponse {
	resp := stateResponse{
		Loaded:     s.Controller.Loaded(),
		State:      s.Controller.State().String(),
		PixelRatio: s.Surface.PixelRatio(),
	}
	if r, err := s.Controller.Rect(); err == nil {
		resp.Rect = &r
	}
	l, b := s.Surface.LayoutSize(), s.Surface.BackingSize()
	resp.Logical = size{l.X, l.Y}
	resp.Backing = size{b.X, b.Y}
	return resp
}

// parsePixelRatio reads the client's devicePixelRatio, defaulting to 1 and
// capping at limit.
func parsePixelRatio(s string, limit float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !(v > 0) {
		return 1
	}
	if v > limit {
		return limit
	}
	return v
}

// UploadPhoto decodes the multipart "photo" field, waits for the overlay,
// places it and draws the first frame. A photo that fails to decode, or
// whose header declares more than max_pixels, leaves the previous canvas
// untouched.
func (h *Handler) UploadPhoto(c *gin.Context) {
	limit := h.cfg.MaxUploadBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)

	fh, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	if fh.Size > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("photo is %s, limit is %s",
			humanize.Bytes(uint64(fh.Size)), humanize.Bytes(uint64(limit)))})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}

	ratio := parsePixelRatio(c.PostForm("dpr"), h.cfg.MaxPixelRatio)
	s, _ := h.session(c, true)
	log := h.logger.With("session", s.ID)
	log.Info("photo upload", "name", fh.Filename, "size", humanize.Bytes(uint64(len(data))), "dpr", ratio)

	s.Lock()
	defer s.Unlock()
	if err := s.Controller.Load(c.Request.Context(), asset.StartPhoto(data, h.cfg.MaxPixels), h.overlay, ratio); err != nil {
		log.Error("failed to render", "error", err)
		status := http.StatusUnprocessableEntity
		if errors.Is(err, asset.ErrTooManyPixels) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"error": "could not load the photo: " + err.Error()})
		return
	}
	resp := snapshot(s)
	resp.Changed = true
	c.JSON(http.StatusOK, resp)
}

type pointerRequest struct {
	Type      string       `json:"type" binding:"required"`
	PointerID int          `json:"pointerId"`
	ClientX   float64      `json:"clientX"`
	ClientY   float64      `json:"clientY"`
	Box       geometry.Box `json:"box"`
}

// Pointer feeds one pointer event to the session's controller.
func (h *Handler) Pointer(c *gin.Context) {
	var req pointerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind, err := interaction.ParsePointerKind(req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, ok := h.session(c, false)
	if !ok {
		c.JSON(http.StatusOK, stateResponse{State: interaction.Idle.String()})
		return
	}

	s.Lock()
	defer s.Unlock()
	changed := s.Controller.HandlePointer(interaction.PointerEvent{
		Kind:      kind,
		PointerID: req.PointerID,
		ClientX:   req.ClientX,
		ClientY:   req.ClientY,
		Box:       req.Box,
	})
	resp := snapshot(s)
	resp.Changed = changed
	resp.Capture = s.Capture.Holds(req.PointerID)
	c.JSON(http.StatusOK, resp)
}

type keyRequest struct {
	Key   string `json:"key" binding:"required"`
	Shift bool   `json:"shift"`
}

// Key feeds one key-down event to the session's controller.
func (h *Handler) Key(c *gin.Context) {
	var req keyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, ok := h.session(c, false)
	if !ok {
		c.JSON(http.StatusOK, stateResponse{State: interaction.Idle.String()})
		return
	}

	s.Lock()
	defer s.Unlock()
	changed := s.Controller.HandleKey(interaction.KeyEvent{Key: req.Key, Shift: req.Shift})
	resp := snapshot(s)
	resp.Changed = changed
	c.JSON(http.StatusOK, resp)
}

// State reports the session's overlay and canvas geometry.
func (h *Handler) State(c *gin.Context) {
	s, ok := h.session(c, false)
	if !ok {
		c.JSON(http.StatusOK, stateResponse{State: interaction.Idle.String()})
		return
	}
	s.Lock()
	defer s.Unlock()
	c.JSON(http.StatusOK, snapshot(s))
}

// Canvas streams the current composite for display.
func (h *Handler) Canvas(c *gin.Context) {
	h.sendComposite(c, false)
}

// Download streams the composite as a file attachment.
func (h *Handler) Download(c *gin.Context) {
	h.sendComposite(c, true)
}

// sendComposite encodes the whole image before writing anything so that an
// export failure produces an error response instead of a truncated file.
// On-screen refreshes use the fast preview encoding.
func (h *Handler) sendComposite(c *gin.Context, attachment bool) {
	s, ok := h.session(c, false)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no photo uploaded"})
		return
	}

	var buf bytes.Buffer
	s.Lock()
	var err error
	if attachment {
		err = s.Surface.Export(&buf)
	} else {
		err = s.Surface.Preview(&buf)
	}
	s.Unlock()
	if err != nil {
		if errors.Is(err, surface.ErrNoPhoto) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no photo uploaded"})
			return
		}
		h.logger.Error("download failed", "session", s.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not export the image"})
		return
	}

	c.Header("Cache-Control", "no-store")
	if attachment {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.cfg.ExportFilename))
		h.logger.Info("download", "session", s.ID, "size", humanize.Bytes(uint64(buf.Len())))
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
