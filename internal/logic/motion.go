package logic

// MotionConfig holds the frame-differencing thresholds.
type MotionConfig struct {
	// PixelThreshold is the minimum absolute difference (0-255) for a
	// sampled byte to count as changed.
	PixelThreshold int
	// Ratio is the fraction of changed pixels above which motion is reported.
	Ratio float64
	// AdaptDivisor sets the background learning rate: each update moves the
	// model 1/AdaptDivisor of the way towards the new frame.
	AdaptDivisor int
}

// DefaultMotionConfig returns the thresholds used by the doorbell camera.
func DefaultMotionConfig() MotionConfig {
	return MotionConfig{
		PixelThreshold: 60,
		Ratio:          0.15,
		AdaptDivisor:   5,
	}
}

// MotionDetector compares frames against a slowly adapting background model.
// Only the red byte of each pixel is sampled.
type MotionDetector struct {
	cfg       MotionConfig
	bg        Frame
	seeded    bool
	lastRatio float64
}

// NewMotionDetector creates a detector with no background model.
func NewMotionDetector(cfg MotionConfig) *MotionDetector {
	if cfg.AdaptDivisor < 1 {
		cfg.AdaptDivisor = 1
	}
	return &MotionDetector{cfg: cfg}
}

// Check reports whether f differs from the background by more than the
// configured ratio, then blends f into the background. The first frame, and
// any frame whose dimensions differ from the model, reseeds the model and
// reports no motion. Malformed frames are ignored.
func (d *MotionDetector) Check(f Frame) bool {
	if !f.Valid() {
		return false
	}

	if !d.seeded || f.Width != d.bg.Width || f.Height != d.bg.Height {
		d.seed(f)
		return false
	}

	pixels := f.Width * f.Height
	changed := 0
	bg := d.bg.Pix
	for i := 0; i < pixels*3; i += 3 {
		cur := int(f.Pix[i])
		old := int(bg[i])
		if abs(cur-old) > d.cfg.PixelThreshold {
			changed++
		}
		bg[i] = byte(old + adaptStep(cur-old, d.cfg.AdaptDivisor))
	}

	d.lastRatio = float64(changed) / float64(pixels)
	return d.lastRatio > d.cfg.Ratio
}

// adaptStep returns delta/div rounded away from zero, so a background that
// differs from a steady input by any amount keeps moving until it matches.
func adaptStep(delta, div int) int {
	step := delta / div
	if delta%div != 0 {
		if delta > 0 {
			step++
		} else {
			step--
		}
	}
	return step
}

func (d *MotionDetector) seed(f Frame) {
	n := f.Width * f.Height * 3
	if cap(d.bg.Pix) < n {
		d.bg.Pix = make([]byte, n)
	}
	d.bg.Pix = d.bg.Pix[:n]
	copy(d.bg.Pix, f.Pix[:n])
	d.bg.Width = f.Width
	d.bg.Height = f.Height
	d.seeded = true
	d.lastRatio = 0
}

// Background returns a copy of the current model.
func (d *MotionDetector) Background() (Frame, bool) {
	if !d.seeded {
		return Frame{}, false
	}
	pix := make([]byte, len(d.bg.Pix))
	copy(pix, d.bg.Pix)
	return Frame{Width: d.bg.Width, Height: d.bg.Height, Pix: pix}, true
}

// LastRatio returns the changed-pixel ratio of the most recent comparison.
func (d *MotionDetector) LastRatio() float64 {
	return d.lastRatio
}

// Reset drops the background model.
func (d *MotionDetector) Reset() {
	d.bg = Frame{}
	d.seeded = false
	d.lastRatio = 0
}
