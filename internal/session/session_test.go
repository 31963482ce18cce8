package session

import (
	"image"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/badgeoverlay/internal/asset"
	"github.com/cristianadrielbraun/badgeoverlay/internal/interaction"
)

func newStore(t *testing.T, size int) *Store {
	t.Helper()
	overlay := asset.Resolved("overlay", image.NewRGBA(image.Rect(0, 0, 28, 10)), nil)
	st, err := NewStore(size, 0, overlay, interaction.DefaultOptions(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return st
}

func TestStore_GetOrCreate(t *testing.T) {
	st := newStore(t, 4)
	s, created := st.GetOrCreate("")
	require.True(t, created)
	require.NotEmpty(t, s.ID)

	again, created := st.GetOrCreate(s.ID)
	assert.False(t, created)
	assert.Same(t, s, again)

	other, created := st.GetOrCreate("forged-id")
	assert.True(t, created)
	assert.NotEqual(t, "forged-id", other.ID)
	assert.Equal(t, 2, st.Len())
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	st := newStore(t, 2)
	a, _ := st.GetOrCreate("")
	b, _ := st.GetOrCreate("")
	_, _ = st.Get(a.ID)
	c, _ := st.GetOrCreate("")

	_, ok := st.Get(b.ID)
	assert.False(t, ok)
	_, ok = st.Get(a.ID)
	assert.True(t, ok)
	_, ok = st.Get(c.ID)
	assert.True(t, ok)
}

func TestStore_BadSize(t *testing.T) {
	_, err := NewStore(0, 0, nil, interaction.DefaultOptions(), slog.Default())
	require.Error(t, err)
}

func TestCapture_ReleaseWithoutCapture(t *testing.T) {
	var c Capture
	require.Error(t, c.ReleasePointerCapture(1))
	require.NoError(t, c.SetPointerCapture(1))
	assert.True(t, c.Holds(1))
	require.NoError(t, c.ReleasePointerCapture(1))
	assert.False(t, c.Holds(1))
}

func TestStore_SessionsShareBackingLimit(t *testing.T) {
	overlay := asset.Resolved("overlay", image.NewRGBA(image.Rect(0, 0, 28, 10)), nil)
	st, err := NewStore(2, 400, overlay, interaction.DefaultOptions(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	s, _ := st.GetOrCreate("")
	s.Surface.Setup(image.NewRGBA(image.Rect(0, 0, 20, 20)), 3)
	assert.Equal(t, image.Pt(20, 20), s.Surface.BackingSize())
}
