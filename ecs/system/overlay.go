package system

import (
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/liminal/ecs"
	"github.com/milk9111/liminal/ecs/component"
	"go.uber.org/zap"
)

const (
	DefaultYScanlineRate = 0.01
	DefaultXScanlineRate = 0.1
	DefaultRerollChance  = 0.05
)

// Clip is a looping background video source for the overlay.
type Clip interface {
	Ready() bool
	Frame() *ebiten.Image
	// Advance moves playback on by dt seconds and reports whether the clip
	// wrapped back to its first frame.
	Advance(dt float64) bool
}

// OverlaySystem scrolls the VHS scanlines and composites the final frame
// through the overlay shader. Until the clip is ready the frame is copied
// through untouched.
type OverlaySystem struct {
	clip      Clip
	rng       *rand.Rand
	logger    *zap.Logger
	shaderSrc []byte

	shader    *ebiten.Shader
	shaderErr error
	video     *ebiten.Image
}

func NewOverlaySystem(clip Clip, shaderSrc []byte, rng *rand.Rand, logger *zap.Logger) *OverlaySystem {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverlaySystem{clip: clip, rng: rng, logger: logger, shaderSrc: shaderSrc}
}

func (s *OverlaySystem) Update(w *ecs.World) {
	if w == nil || s.clip == nil || !s.clip.Ready() {
		return
	}
	dt := w.DeltaTime()
	looped := s.clip.Advance(dt)

	ecs.ForEach(w, component.VHSOverlayComponent.Kind(), func(e ecs.Entity, o *component.VHSOverlay) {
		if !o.Enabled {
			return
		}
		if looped {
			o.YScanline = s.rng.Float64()
			o.XScanline = s.rng.Float64()
		}

		o.YScanline += dt * o.YRate
		o.XScanline -= dt * o.XRate

		if o.YScanline >= 1 {
			o.YScanline = s.rng.Float64()
		}
		if o.XScanline <= 0 || s.rng.Float64() < o.RerollChance {
			o.XScanline = s.rng.Float64()
		}
	})
}

// Draw composites src onto dst, through the overlay shader when the clip
// has frames and an enabled overlay exists.
func (s *OverlaySystem) Draw(w *ecs.World, dst, src *ebiten.Image) {
	if dst == nil || src == nil {
		return
	}
	overlay, ok := s.activeOverlay(w)
	if !ok || s.clip == nil || !s.clip.Ready() || s.clip.Frame() == nil || !s.ensureShader() {
		dst.DrawImage(src, nil)
		return
	}

	bounds := src.Bounds()
	sw, sh := bounds.Dx(), bounds.Dy()
	s.fitVideo(sw, sh)

	op := &ebiten.DrawRectShaderOptions{}
	op.Images[0] = src
	op.Images[1] = s.video
	op.Uniforms = map[string]any{
		"YScanline": float32(overlay.YScanline),
		"XScanline": float32(overlay.XScanline),
	}
	dst.DrawRectShader(sw, sh, s.shader, op)
}

func (s *OverlaySystem) activeOverlay(w *ecs.World) (component.VHSOverlay, bool) {
	if w == nil {
		return component.VHSOverlay{}, false
	}
	e, ok := w.First(component.VHSOverlayComponent.Kind())
	if !ok {
		return component.VHSOverlay{}, false
	}
	o, ok := ecs.Get(w, e, component.VHSOverlayComponent)
	if !ok || !o.Enabled {
		return component.VHSOverlay{}, false
	}
	return o, true
}

func (s *OverlaySystem) ensureShader() bool {
	if s.shader != nil {
		return true
	}
	if s.shaderErr != nil || len(s.shaderSrc) == 0 {
		return false
	}
	shader, err := ebiten.NewShader(s.shaderSrc)
	if err != nil {
		s.shaderErr = err
		s.logger.Error("overlay shader disabled", zap.Error(err))
		return false
	}
	s.shader = shader
	return true
}

// fitVideo scales the current clip frame to the screen size; shader inputs
// must share the destination's dimensions.
func (s *OverlaySystem) fitVideo(w, h int) {
	if s.video == nil || s.video.Bounds().Dx() != w || s.video.Bounds().Dy() != h {
		if s.video != nil {
			s.video.Deallocate()
		}
		s.video = ebiten.NewImage(w, h)
	}
	frame := s.clip.Frame()
	fb := frame.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w)/float64(fb.Dx()), float64(h)/float64(fb.Dy()))
	op.Filter = ebiten.FilterLinear
	s.video.Clear()
	s.video.DrawImage(frame, op)
}
