package interaction

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/badgeoverlay/internal/asset"
	"github.com/cristianadrielbraun/badgeoverlay/internal/geometry"
)

type fakeCanvas struct {
	w, h   float64
	ratio  float64
	draws  int
	lastAt geometry.Rect
}

func (f *fakeCanvas) Setup(photo image.Image, ratio float64) {
	b := photo.Bounds()
	f.w, f.h, f.ratio = float64(b.Dx()), float64(b.Dy()), ratio
}
func (f *fakeCanvas) LogicalSize() (float64, float64) { return f.w, f.h }
func (f *fakeCanvas) DrawAll(r geometry.Rect)        { f.draws++; f.lastAt = r }

type fakeCapture struct {
	captured map[int]bool
	releases int
}

func (f *fakeCapture) SetPointerCapture(id int) error {
	if f.captured == nil {
		f.captured = map[int]bool{}
	}
	f.captured[id] = true
	return nil
}

func (f *fakeCapture) ReleasePointerCapture(id int) error {
	f.releases++
	if !f.captured[id] {
		return errors.New("InvalidPointerId")
	}
	delete(f.captured, id)
	return nil
}

func pending(w, h int) *asset.Pending {
	return asset.Resolved("img", image.NewRGBA(image.Rect(0, 0, w, h)), nil)
}

// logical box: rendered at natural size with no page offset
var box = geometry.Box{Width: 1000, Height: 800}

func loaded(t *testing.T) (*Controller, *fakeCanvas, *fakeCapture) {
	t.Helper()
	canvas, capture := &fakeCanvas{}, &fakeCapture{}
	c := New(DefaultOptions(), canvas, capture, nil)
	require.NoError(t, c.Load(context.Background(), pending(1000, 800), pending(280, 100), 2))
	return c, canvas, capture
}

func down(id int, x, y float64) PointerEvent {
	return PointerEvent{Kind: PointerDown, PointerID: id, ClientX: x, ClientY: y, Box: box}
}

func move(id int, x, y float64) PointerEvent {
	return PointerEvent{Kind: PointerMove, PointerID: id, ClientX: x, ClientY: y, Box: box}
}

func TestLoad_PlacesAndDraws(t *testing.T) {
	c, canvas, _ := loaded(t)
	r, err := c.Rect()
	require.NoError(t, err)
	assert.Equal(t, geometry.Rect{X: 15, Y: 350, W: 280, H: 100}, r)
	assert.Equal(t, 1, canvas.draws)
	assert.Equal(t, 2.0, canvas.ratio)
	assert.Equal(t, Idle, c.State())
}

func TestLoad_FailureLeavesStateUntouched(t *testing.T) {
	c, canvas, _ := loaded(t)
	before, _ := c.Rect()

	err := c.Load(context.Background(), asset.Resolved("photo", nil, errors.New("corrupt")), pending(280, 100), 1)
	require.Error(t, err)
	err = c.Load(context.Background(), pending(10, 10), asset.Resolved("overlay", nil, errors.New("blocked")), 1)
	require.Error(t, err)

	after, _ := c.Rect()
	assert.Equal(t, before, after)
	assert.Equal(t, 1000.0, canvas.w)
	assert.Equal(t, 1, canvas.draws)
}

func TestNoopsBeforeLoad(t *testing.T) {
	canvas := &fakeCanvas{}
	c := New(DefaultOptions(), canvas, nil, nil)
	assert.False(t, c.HandlePointer(down(1, 100, 380)))
	assert.False(t, c.HandleKey(KeyEvent{Key: "ArrowLeft"}))
	_, err := c.Rect()
	require.ErrorIs(t, err, ErrNoPhoto)
	assert.Zero(t, canvas.draws)
}

func TestDrag_Scenario(t *testing.T) {
	c, canvas, capture := loaded(t)
	require.True(t, c.HandlePointer(down(7, 100, 380)))
	assert.Equal(t, Dragging, c.State())
	assert.True(t, capture.captured[7])
	assert.Equal(t, 1, canvas.draws, "pointer-down does not redraw")

	require.True(t, c.HandlePointer(move(7, 300, 380)))
	r, _ := c.Rect()
	assert.Equal(t, 215.0, r.X)
	assert.Equal(t, 350.0, r.Y)
	assert.Equal(t, 2, canvas.draws)

	// far right clamps to 1000-15-280
	c.HandlePointer(move(7, 5000, 380))
	r, _ = c.Rect()
	assert.Equal(t, 705.0, r.X)

	require.True(t, c.HandlePointer(PointerEvent{Kind: PointerUp, PointerID: 7}))
	assert.Equal(t, Idle, c.State())
	assert.Empty(t, capture.captured)
}

func TestDrag_IsRigid(t *testing.T) {
	c, _, _ := loaded(t)
	require.True(t, c.HandlePointer(down(1, 40.5, 377.25)))
	r0, _ := c.Rect()
	offX, offY := 40.5-r0.X, 377.25-r0.Y

	for _, p := range [][2]float64{{60, 390}, {333.3, 200.7}, {500, 500}, {120.25, 410.5}} {
		require.True(t, c.HandlePointer(move(1, p[0], p[1])))
		r, _ := c.Rect()
		assert.InDelta(t, -offX, r.X-p[0], 1e-9)
		assert.InDelta(t, -offY, r.Y-p[1], 1e-9)
		assert.Equal(t, r0.W, r.W)
		assert.Equal(t, r0.H, r.H)
	}
}

func TestDrag_ScaledElement(t *testing.T) {
	c, _, _ := loaded(t)
	half := geometry.Box{Left: 100, Top: 50, Width: 500, Height: 400}
	// client (150, 240) → logical (100, 380)
	require.True(t, c.HandlePointer(PointerEvent{Kind: PointerDown, PointerID: 1, ClientX: 150, ClientY: 240, Box: half}))
	require.True(t, c.HandlePointer(PointerEvent{Kind: PointerMove, PointerID: 1, ClientX: 250, ClientY: 240, Box: half}))
	r, _ := c.Rect()
	assert.Equal(t, 215.0, r.X)
}

func TestPointerDownOutsideIgnored(t *testing.T) {
	c, canvas, capture := loaded(t)
	assert.False(t, c.HandlePointer(down(1, 900, 100)))
	assert.Equal(t, Idle, c.State())
	assert.Empty(t, capture.captured)
	assert.Equal(t, 1, canvas.draws)
	assert.False(t, c.HandlePointer(move(1, 950, 100)))
}

func TestPointerDownEmptyBoxIgnored(t *testing.T) {
	c, _, _ := loaded(t)
	assert.False(t, c.HandlePointer(PointerEvent{Kind: PointerDown, PointerID: 1, ClientX: 100, ClientY: 380}))
}

func TestDrag_OtherPointerIgnored(t *testing.T) {
	c, _, _ := loaded(t)
	require.True(t, c.HandlePointer(down(1, 100, 380)))
	assert.False(t, c.HandlePointer(down(2, 100, 380)))
	assert.False(t, c.HandlePointer(move(2, 300, 380)))
	assert.False(t, c.HandlePointer(PointerEvent{Kind: PointerUp, PointerID: 2}))
	assert.Equal(t, Dragging, c.State())
}

func TestDrag_EndsOnCancelAndLeave(t *testing.T) {
	for _, kind := range []PointerKind{PointerCancel, PointerLeave} {
		c, _, _ := loaded(t)
		require.True(t, c.HandlePointer(down(3, 100, 380)))
		require.True(t, c.HandlePointer(PointerEvent{Kind: kind, PointerID: 3}))
		assert.Equal(t, Idle, c.State(), kind.String())
	}
}

func TestDrag_ReleaseAfterCaptureLost(t *testing.T) {
	c, _, capture := loaded(t)
	require.True(t, c.HandlePointer(down(4, 100, 380)))
	delete(capture.captured, 4) // host dropped capture
	require.True(t, c.HandlePointer(PointerEvent{Kind: PointerLeave, PointerID: 4}))
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, 1, capture.releases)
}

func TestUpWhileIdleIsNoop(t *testing.T) {
	c, _, capture := loaded(t)
	assert.False(t, c.HandlePointer(PointerEvent{Kind: PointerUp, PointerID: 1}))
	assert.Zero(t, capture.releases)
}

func TestNudge_Steps(t *testing.T) {
	cases := []struct {
		key    string
		shift  bool
		dx, dy float64
	}{
		{"ArrowLeft", false, -1, 0},
		{"ArrowRight", false, 1, 0},
		{"ArrowUp", false, 0, -1},
		{"ArrowDown", false, 0, 1},
		{"ArrowRight", true, 8, 0},
		{"ArrowDown", true, 0, 8},
		{"ArrowUp", true, 0, -8},
	}
	for _, tc := range cases {
		c, canvas, _ := loaded(t)
		// move off the padding so left/up nudges are not clamped
		c.rect.X, c.rect.Y = 100, 300
		require.True(t, c.HandleKey(KeyEvent{Key: tc.key, Shift: tc.shift}))
		r, _ := c.Rect()
		assert.Equal(t, 100+tc.dx, r.X, tc.key)
		assert.Equal(t, 300+tc.dy, r.Y, tc.key)
		assert.Equal(t, 2, canvas.draws)
	}
}

func TestNudge_ClampsAndIgnoresOtherKeys(t *testing.T) {
	c, canvas, _ := loaded(t)
	require.True(t, c.HandleKey(KeyEvent{Key: "ArrowLeft", Shift: true}))
	r, _ := c.Rect()
	assert.Equal(t, 15.0, r.X)

	assert.False(t, c.HandleKey(KeyEvent{Key: "a"}))
	assert.Equal(t, 2, canvas.draws)
}

func TestNudge_DuringDragKeepsDrag(t *testing.T) {
	c, _, _ := loaded(t)
	require.True(t, c.HandlePointer(down(1, 100, 380)))
	require.True(t, c.HandleKey(KeyEvent{Key: "ArrowRight"}))
	assert.Equal(t, Dragging, c.State())
}

func TestReloadEndsDragAndReplaces(t *testing.T) {
	c, _, capture := loaded(t)
	require.True(t, c.HandlePointer(down(1, 100, 380)))
	require.NoError(t, c.Load(context.Background(), pending(400, 300), pending(280, 100), 1))
	assert.Equal(t, Idle, c.State())
	assert.Empty(t, capture.captured)
	r, _ := c.Rect()
	// pad 12, w = round(112) = 112, h = round(40) = 40
	assert.Equal(t, geometry.Rect{X: 12, Y: 130, W: 112, H: 40}, r)
}

func TestParsePointerKind(t *testing.T) {
	k, err := ParsePointerKind("pointerdown")
	require.NoError(t, err)
	assert.Equal(t, PointerDown, k)
	k, err = ParsePointerKind(" Leave ")
	require.NoError(t, err)
	assert.Equal(t, PointerLeave, k)
	_, err = ParsePointerKind("wheel")
	require.Error(t, err)
}
