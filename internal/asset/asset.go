// Package asset loads the two images the compositor waits on: the uploaded
// photo and the overlay badge. Each load runs once in the background and
// resolves or fails exactly once.
package asset

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
)

// ErrNotLoaded is returned by Image before a load has succeeded.
var ErrNotLoaded = errors.New("asset: not loaded")

// Pending is a one-shot asynchronous image load.
type Pending struct {
	name string
	done chan struct{}
	once sync.Once
	img  image.Image
	err  error
}

// Start runs load in its own goroutine and returns immediately.
func Start(name string, load func() (image.Image, error)) *Pending {
	p := &Pending{name: name, done: make(chan struct{})}
	go func() {
		img, err := load()
		p.resolve(img, err)
	}()
	return p
}

// Resolved returns a Pending that has already finished.
func Resolved(name string, img image.Image, err error) *Pending {
	p := &Pending{name: name, done: make(chan struct{})}
	p.resolve(img, err)
	return p
}

func (p *Pending) resolve(img image.Image, err error) {
	p.once.Do(func() {
		if err == nil && img == nil {
			err = fmt.Errorf("%s: empty image", p.name)
		}
		if err == nil {
			b := img.Bounds()
			if b.Dx() <= 0 || b.Dy() <= 0 {
				err = fmt.Errorf("%s: zero size image", p.name)
			}
		}
		if err != nil {
			p.err = err
		} else {
			p.img = img
		}
		close(p.done)
	})
}

// Name identifies the asset in logs and errors.
func (p *Pending) Name() string { return p.name }

// Wait blocks until the load finishes or ctx is done.
func (p *Pending) Wait(ctx context.Context) (image.Image, error) {
	select {
	case <-p.done:
		return p.img, p.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", p.name, ctx.Err())
	}
}

// Ready reports whether the load finished successfully.
func (p *Pending) Ready() bool {
	select {
	case <-p.done:
		return p.err == nil
	default:
		return false
	}
}

// Image returns the loaded image without blocking.
func (p *Pending) Image() (image.Image, error) {
	select {
	case <-p.done:
		if p.err != nil {
			return nil, p.err
		}
		return p.img, nil
	default:
		return nil, fmt.Errorf("%s: %w", p.name, ErrNotLoaded)
	}
}

// Join waits for the photo, then the overlay. Both must succeed; the first
// failure is returned and the other image is discarded.
func Join(ctx context.Context, photo, overlay *Pending) (photoImg, overlayImg image.Image, err error) {
	photoImg, err = photo.Wait(ctx)
	if err != nil {
		return nil, nil, err
	}
	overlayImg, err = overlay.Wait(ctx)
	if err != nil {
		return nil, nil, err
	}
	return photoImg, overlayImg, nil
}
