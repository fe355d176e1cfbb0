// Command vhsview previews the tape overlay on a test card. Space toggles the
// overlay and R reloads the shader from -shader when one is given.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"math/rand/v2"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/liminal/assets"
	"github.com/milk9111/liminal/ecs"
	"github.com/milk9111/liminal/ecs/component"
	"github.com/milk9111/liminal/ecs/system"
	"go.uber.org/zap"
)

const (
	screenWidth  = 960
	screenHeight = 540
)

var bars = []color.RGBA{
	{0xc0, 0xc0, 0xc0, 0xff},
	{0xc0, 0xc0, 0x00, 0xff},
	{0x00, 0xc0, 0xc0, 0xff},
	{0x00, 0xc0, 0x00, 0xff},
	{0xc0, 0x00, 0xc0, 0xff},
	{0xc0, 0x00, 0x00, 0xff},
	{0x00, 0x00, 0xc0, 0xff},
}

type viewer struct {
	logger     *zap.Logger
	world      *ecs.World
	overlay    *system.OverlaySystem
	overlayEnt ecs.Entity
	clip       *system.NoiseClip
	shaderPath string
	seed       uint64

	card *ebiten.Image
}

func newViewer(logger *zap.Logger, shaderPath string, frames int, seed uint64) (*viewer, error) {
	v := &viewer{
		logger:     logger,
		world:      ecs.NewWorld(),
		shaderPath: shaderPath,
		seed:       seed,
		clip:       system.NewNoiseClip(system.FallbackClipWidth, system.FallbackClipHeight, frames, system.DefaultClipFPS, seed),
		card:       testCard(screenWidth, screenHeight),
	}

	v.overlayEnt = v.world.CreateEntity()
	if err := ecs.Add(v.world, v.overlayEnt, component.VHSOverlayComponent, component.VHSOverlay{
		Enabled:      true,
		YRate:        system.DefaultYScanlineRate,
		XRate:        system.DefaultXScanlineRate,
		RerollChance: system.DefaultRerollChance,
	}); err != nil {
		return nil, err
	}

	if err := v.loadShader(); err != nil {
		return nil, err
	}
	v.clip.Prepare(context.Background(), func(err error) {
		if err != nil {
			logger.Error("clip failed", zap.Error(err))
			return
		}
		logger.Info("clip ready", zap.Int("frames", v.clip.Len()))
	})
	return v, nil
}

func (v *viewer) loadShader() error {
	src := assets.VHSShader
	if v.shaderPath != "" {
		b, err := os.ReadFile(v.shaderPath)
		if err != nil {
			return fmt.Errorf("read shader: %w", err)
		}
		src = b
	}
	rng := rand.New(rand.NewPCG(v.seed, v.seed+1))
	v.overlay = system.NewOverlaySystem(v.clip, src, rng, v.logger)
	return nil
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if o, ok := ecs.Ref(v.world, v.overlayEnt, component.VHSOverlayComponent); ok {
			o.Enabled = !o.Enabled
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) && v.shaderPath != "" {
		if err := v.loadShader(); err != nil {
			v.logger.Warn("shader reload", zap.Error(err))
		}
	}

	v.world.SetDeltaTime(1 / float64(ebiten.TPS()))
	v.overlay.Update(v.world)
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	v.overlay.Draw(v.world, screen, v.card)

	o, _ := ecs.Get(v.world, v.overlayEnt, component.VHSOverlayComponent)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("ready: %v\nenabled: %v\ny: %.3f\nx: %.3f", v.clip.Ready(), o.Enabled, o.YScanline, o.XScanline), 10, 10)
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// testCard draws colour bars over a grey grid.
func testCard(w, h int) *ebiten.Image {
	img := ebiten.NewImage(w, h)
	img.Fill(color.RGBA{0x20, 0x20, 0x20, 0xff})

	barW := float32(w) / float32(len(bars))
	for i, c := range bars {
		vector.FillRect(img, float32(i)*barW, 0, barW, float32(h)*0.66, c, false)
	}
	for x := 0; x < w; x += 40 {
		vector.StrokeLine(img, float32(x), float32(h)*0.66, float32(x), float32(h), 1, color.Gray{0x70}, false)
	}
	for y := int(float32(h) * 0.66); y < h; y += 40 {
		vector.StrokeLine(img, 0, float32(y), float32(w), float32(y), 1, color.Gray{0x70}, false)
	}
	return img
}

func main() {
	shaderPath := flag.String("shader", "", "Kage shader file to preview instead of the embedded one")
	frames := flag.Int("frames", system.DefaultClipFrames, "Noise clip length in frames")
	seed := flag.Uint64("seed", 1, "Noise seed")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	v, err := newViewer(logger, *shaderPath, *frames, *seed)
	if err != nil {
		logger.Fatal("vhsview", zap.Error(err))
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("vhsview")
	if err := ebiten.RunGame(v); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Fatal("vhsview", zap.Error(err))
	}
}
