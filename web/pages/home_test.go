package pages

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/badgeoverlay/web/components"
)

func TestHomePage(t *testing.T) {
	var buf bytes.Buffer
	err := HomePage(components.PageData{
		Title:          "Badge <yours>",
		ExportFilename: "out.png",
		NudgeStep:      1,
		NudgeStepFast:  8,
	}).Render(context.Background(), &buf)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "<title>Badge &lt;yours&gt;</title>")
	assert.Contains(t, out, `data-filename="out.png"`)
	assert.Contains(t, out, "1px per press, 8px with Shift")
	assert.Contains(t, out, `id="canvas"`)
	assert.NotContains(t, out, "%!")
}

func TestHomePage_OrderedRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HomePage(components.PageData{Title: "t"}).Render(context.Background(), &buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
	assert.Less(t, strings.Index(out, `id="canvas"`), strings.Index(out, `src="/web/static/app.js"`))
}

// The script must take pointer capture inside the pointerdown handler itself,
// before the event is posted, so a fast drag keeps receiving moves.
func TestScript_CapturesOnPointerDown(t *testing.T) {
	src, err := os.ReadFile("../static/app.js")
	require.NoError(t, err)
	js := string(src)

	start := strings.Index(js, `addEventListener("pointerdown"`)
	require.NotEqual(t, -1, start)
	handler := js[start:]
	handler = handler[:strings.Index(handler, "});")]

	capture := strings.Index(handler, "setPointerCapture(e.pointerId)")
	dragging := strings.Index(handler, `classList.add("dragging")`)
	post := strings.Index(handler, `send("down", e)`)
	require.NotEqual(t, -1, capture)
	require.NotEqual(t, -1, dragging)
	require.NotEqual(t, -1, post)
	assert.Less(t, capture, post)
	assert.Less(t, dragging, post)
	assert.NotContains(t, handler, "await")
}
