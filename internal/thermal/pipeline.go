// Package thermal decodes dual-plane thermal camera frames into heatmaps.
//
// A raw frame stacks a YUYV visible image on top of a thermal image of the
// same size whose 2-byte samples convert to Celsius as raw/64 - 273.15.
// Process runs the whole chain:
//
//	visible, therm, _ := thermal.Split(frame)
//	grid, _ := thermal.Decode(therm)
//	peak, _ := thermal.Locate(grid, thermal.NaNIgnore)
//	img, _ := thermal.Render(visible, thermal.UpscaleFactor)
//	thermal.ApplyPalette(img, thermal.HotPalette())
//	thermal.DrawCrosshair(img, peak, thermal.DefaultGeometry())
package thermal

import "image"

// Options configures a Pipeline.
type Options struct {
	Geometry  Geometry
	NaNPolicy NaNPolicy
	Palette   *Palette
	Label     bool // draw the peak temperature next to the crosshair
}

// Result is the output of one pipeline pass.
type Result struct {
	Image   *image.RGBA
	Peak    Peak
	Summary Summary
}

// Pipeline turns raw frames into annotated heatmaps. It keeps no per-frame
// state, so one Pipeline can serve any number of frames.
type Pipeline struct {
	opts Options
}

// NewPipeline creates a pipeline, filling zero options with defaults.
func NewPipeline(opts Options) *Pipeline {
	if opts.Geometry == (Geometry{}) {
		opts.Geometry = DefaultGeometry()
	}
	if opts.Palette == nil {
		opts.Palette = HotPalette()
	}
	return &Pipeline{opts: opts}
}

// Geometry returns the geometry used for overlays.
func (p *Pipeline) Geometry() Geometry {
	return p.opts.Geometry
}

// Process splits, decodes, locates, renders and composes one frame.
func (p *Pipeline) Process(f RawFrame) (*Result, error) {
	visible, therm, err := Split(f)
	if err != nil {
		return nil, err
	}

	grid, err := Decode(therm)
	if err != nil {
		return nil, err
	}

	summary, err := Summarize(grid, p.opts.NaNPolicy)
	if err != nil {
		return nil, err
	}

	img, err := Render(visible, p.opts.Geometry.Upscale)
	if err != nil {
		return nil, err
	}

	ApplyPalette(img, p.opts.Palette)
	DrawCrosshair(img, summary.Hottest, p.opts.Geometry)
	if p.opts.Label {
		DrawLabel(img, summary.Hottest, p.opts.Geometry)
	}

	return &Result{Image: img, Peak: summary.Hottest, Summary: summary}, nil
}
