// Package interaction drives the overlay rectangle from pointer and keyboard
// input. A Controller owns the rectangle and the drag session for one canvas;
// it is not safe for concurrent use and expects its caller to deliver events
// one at a time.
package interaction

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/cristianadrielbraun/badgeoverlay/internal/asset"
	"github.com/cristianadrielbraun/badgeoverlay/internal/geometry"
)

// ErrNoPhoto is returned by operations that need a loaded photo.
var ErrNoPhoto = errors.New("interaction: no photo loaded")

// State is the controller's drag state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// mode is the tagged drag state. The pointer id and grab offset only exist
// while dragging.
type mode interface{ state() State }

type idle struct{}

type dragging struct {
	pointerID int
	offset    geometry.Point // pointer minus overlay origin at grab time
}

func (idle) state() State     { return Idle }
func (dragging) state() State { return Dragging }

// Canvas is the render surface the controller sizes and redraws.
type Canvas interface {
	Setup(photo image.Image, ratio float64)
	LogicalSize() (w, h float64)
	DrawAll(r geometry.Rect)
}

// Capturer routes a pointer's later events to the canvas while it is held.
type Capturer interface {
	SetPointerCapture(pointerID int) error
	ReleasePointerCapture(pointerID int) error
}

// Options configure placement, clamping and nudging.
type Options struct {
	Params        geometry.Params
	NudgeStep     float64
	NudgeStepFast float64
}

// DefaultOptions mirror config.DefaultConfig.
func DefaultOptions() Options {
	return Options{Params: geometry.DefaultParams(), NudgeStep: 1, NudgeStepFast: 8}
}

// Controller is the overlay interaction state machine.
type Controller struct {
	opts    Options
	canvas  Canvas
	capture Capturer
	logger  *slog.Logger

	loaded bool
	rect   geometry.Rect
	mode   mode
}

// New returns an idle controller with no photo.
func New(opts Options, canvas Canvas, capture Capturer, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{opts: opts, canvas: canvas, capture: capture, logger: logger, mode: idle{}}
}

// State returns the current drag state.
func (c *Controller) State() State { return c.mode.state() }

// Loaded reports whether a photo has been placed.
func (c *Controller) Loaded() bool { return c.loaded }

// Rect returns the overlay rectangle.
func (c *Controller) Rect() (geometry.Rect, error) {
	if !c.loaded {
		return geometry.Rect{}, ErrNoPhoto
	}
	return c.rect, nil
}

// Load waits for the photo and then the overlay. If either fails nothing is
// changed. Otherwise the canvas is sized for the photo at the given pixel
// ratio, the overlay is placed from scratch, any drag ends and the canvas is
// redrawn.
func (c *Controller) Load(ctx context.Context, photo, overlay *asset.Pending, ratio float64) error {
	photoImg, overlayImg, err := asset.Join(ctx, photo, overlay)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	pb, ob := photoImg.Bounds(), overlayImg.Bounds()
	rect, err := geometry.InitialPlacement(c.opts.Params,
		float64(pb.Dx()), float64(pb.Dy()), float64(ob.Dx()), float64(ob.Dy()))
	if err != nil {
		return fmt.Errorf("place overlay: %w", err)
	}

	c.endDrag()
	c.canvas.Setup(photoImg, ratio)
	c.rect = rect
	c.loaded = true
	c.logger.Debug("overlay placed", "canvas", pb.Size(), "rect", rect, "ratio", ratio)
	c.canvas.DrawAll(c.rect)
	return nil
}

// HandlePointer dispatches ev. It reports whether the event changed the drag
// state or moved the overlay.
func (c *Controller) HandlePointer(ev PointerEvent) bool {
	switch ev.Kind {
	case PointerDown:
		return c.pointerDown(ev)
	case PointerMove:
		return c.pointerMove(ev)
	case PointerUp, PointerCancel, PointerLeave:
		return c.pointerEnd(ev)
	}
	return false
}

func (c *Controller) toCanvas(ev PointerEvent) (geometry.Point, bool) {
	w, h := c.canvas.LogicalSize()
	return geometry.PointerToCanvas(ev.ClientX, ev.ClientY, ev.Box, w, h)
}

func (c *Controller) pointerDown(ev PointerEvent) bool {
	if !c.loaded || c.State() != Idle {
		return false
	}
	p, ok := c.toCanvas(ev)
	if !ok || !geometry.HitTest(p, c.rect) {
		return false
	}
	c.mode = dragging{
		pointerID: ev.PointerID,
		offset:    geometry.Point{X: p.X - c.rect.X, Y: p.Y - c.rect.Y},
	}
	if c.capture != nil {
		if err := c.capture.SetPointerCapture(ev.PointerID); err != nil {
			c.logger.Debug("pointer capture unavailable", "pointer", ev.PointerID, "error", err)
		}
	}
	return true
}

func (c *Controller) pointerMove(ev PointerEvent) bool {
	d, ok := c.mode.(dragging)
	if !ok || d.pointerID != ev.PointerID {
		return false
	}
	p, ok := c.toCanvas(ev)
	if !ok {
		return false
	}
	c.rect.X = p.X - d.offset.X
	c.rect.Y = p.Y - d.offset.Y
	c.clampAndDraw()
	return true
}

func (c *Controller) pointerEnd(ev PointerEvent) bool {
	d, ok := c.mode.(dragging)
	if !ok || d.pointerID != ev.PointerID {
		return false
	}
	c.endDrag()
	return true
}

// endDrag returns to Idle and releases capture. A release that fails because
// capture was already lost is not an error.
func (c *Controller) endDrag() {
	d, ok := c.mode.(dragging)
	c.mode = idle{}
	if ok && c.capture != nil {
		_ = c.capture.ReleasePointerCapture(d.pointerID)
	}
}

// HandleKey nudges the overlay for arrow keys, by NudgeStepFast when Shift is
// held. It reports whether the overlay was moved. The drag state is left
// alone.
func (c *Controller) HandleKey(ev KeyEvent) bool {
	if !c.loaded {
		return false
	}
	dx, dy, ok := ev.direction()
	if !ok {
		return false
	}
	step := c.opts.NudgeStep
	if ev.Shift {
		step = c.opts.NudgeStepFast
	}
	c.rect = c.rect.Translate(dx*step, dy*step)
	c.clampAndDraw()
	return true
}

func (c *Controller) clampAndDraw() {
	w, h := c.canvas.LogicalSize()
	c.rect = geometry.Clamp(c.opts.Params, c.rect, w, h)
	c.canvas.DrawAll(c.rect)
}
