package camera

import (
	"context"
	"errors"

	"github.com/sweeney/smart-doorbell/internal/logic"
)

// FakeSource is a test double that returns scripted frames.
type FakeSource struct {
	// Frames contains frames to return in order. The last frame repeats
	// once exhausted.
	Frames []logic.Frame

	// Err, if set, is returned by Fetch.
	Err error

	// Fetches counts Fetch calls.
	Fetches int

	index int
}

// NewFakeSource creates a FakeSource returning the given frames.
func NewFakeSource(frames ...logic.Frame) *FakeSource {
	return &FakeSource{Frames: frames}
}

// Fetch returns the next scripted frame.
func (f *FakeSource) Fetch(ctx context.Context) (logic.Frame, error) {
	f.Fetches++
	if f.Err != nil {
		return logic.Frame{}, f.Err
	}
	if len(f.Frames) == 0 {
		return logic.Frame{}, errors.New("no frames configured")
	}
	fr := f.Frames[f.index]
	if f.index < len(f.Frames)-1 {
		f.index++
	}
	return fr, nil
}

// SolidFrame returns a w x h frame with every byte set to v.
func SolidFrame(w, h int, v byte) logic.Frame {
	pix := make([]byte, w*h*3)
	for i := range pix {
		pix[i] = v
	}
	return logic.Frame{Width: w, Height: h, Pix: pix}
}
