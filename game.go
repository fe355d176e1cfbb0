package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/liminal/assets"
	"github.com/milk9111/liminal/common"
	"github.com/milk9111/liminal/ecs"
	"github.com/milk9111/liminal/ecs/entity"
	"github.com/milk9111/liminal/ecs/system"
	"github.com/milk9111/liminal/prefabs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errQuit = errors.New("quit")

type Game struct {
	cfg    Config
	logger *zap.Logger

	world     *ecs.World
	scheduler *ecs.Scheduler
	scene     entity.Scene

	pickup  *system.PickupSystem
	overlay *system.OverlaySystem
	render  *system.RenderSystem
	clip    *system.NoiseClip

	offscreen *ebiten.Image

	watcher      *prefabs.Watcher
	fingerprints *prefabs.Fingerprints

	cancel  context.CancelFunc
	paused  bool
	quit    bool
	pauseUI *ebitenui.UI
}

func NewGame(cfg Config, logger *zap.Logger) (*Game, error) {
	prefabs.SetDiskDir(cfg.PrefabDir)

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	logger.Info("starting", zap.String("scene", cfg.Scene), zap.Uint64("seed", seed), zap.String("prefabs", cfg.PrefabDir))

	g := &Game{
		cfg:          cfg,
		logger:       logger,
		world:        ecs.NewWorld(),
		fingerprints: prefabs.NewFingerprints(),
	}

	if audio.CurrentContext() == nil {
		audio.NewContext(assets.SampleRate)
	}

	spec, err := g.loadScene(cfg.Scene)
	if err != nil {
		return nil, err
	}
	scene, err := entity.BuildScene(g.world, ecs.NewPhysicsWorld(spec.FloorY), spec)
	if err != nil {
		return nil, err
	}
	g.scene = scene
	logger.Info("scene built", zap.String("name", scene.Name), zap.Int("entities", len(scene.Entities)), zap.Stringer("player", scene.Player))

	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel

	g.clip = system.NewNoiseClip(system.FallbackClipWidth, system.FallbackClipHeight, cfg.ClipFrames, system.DefaultClipFPS, seed)
	var clip system.Clip = g.clip
	if cfg.NoOverlay {
		clip = nil
	} else {
		g.clip.Prepare(ctx, func(err error) {
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("overlay clip failed", zap.Error(err))
				return
			}
			logger.Debug("overlay clip ready", zap.Int("frames", g.clip.Len()))
		})
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	g.pickup = system.NewPickupSystem(logger.Named("pickup"), prefabs.LoadScript)
	g.overlay = system.NewOverlaySystem(clip, assets.VHSShader, rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64())), logger.Named("overlay"))
	g.render = system.NewRenderSystem(cfg.Debug)
	g.scheduler = ecs.NewScheduler(
		system.NewInputSystem(nil),
		system.NewLocomotionSystem(logger.Named("locomotion")),
		system.NewFlickerSystem(rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))),
		g.pickup,
		system.NewAudioSystem(),
		system.NewHUDSystem(),
		g.overlay,
	)
	g.pauseUI = NewPauseUI(g)

	if cfg.HotReload && cfg.PrefabDir != "" {
		w, err := prefabs.WatchDir(cfg.PrefabDir)
		if err != nil {
			logger.Warn("hot reload disabled", zap.Error(err))
		} else {
			g.watcher = w
		}
	}

	return g, nil
}

// loadScene reads the scene and every prefab it places concurrently, so a
// broken prefab fails startup with all of its siblings checked.
func (g *Game) loadScene(name string) (prefabs.SceneSpec, error) {
	spec, err := prefabs.LoadSceneSpec(name)
	if err != nil {
		return prefabs.SceneSpec{}, err
	}

	seen := map[string]bool{name: true}
	names := []string{name}
	for _, p := range spec.Entities {
		if !seen[p.Prefab] {
			seen[p.Prefab] = true
			names = append(names, p.Prefab)
		}
	}

	data := make([][]byte, len(names))
	var eg errgroup.Group
	for i, n := range names {
		eg.Go(func() error {
			b, err := prefabs.Load(n)
			if err != nil {
				return fmt.Errorf("prefabs: load %s: %w", n, err)
			}
			if i > 0 {
				if _, err := prefabs.LoadEntityBuildSpec(n); err != nil {
					return err
				}
			}
			data[i] = b
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return prefabs.SceneSpec{}, err
	}
	for i, n := range names {
		g.fingerprints.Changed(n, data[i])
	}
	return spec, nil
}

func (g *Game) Update() error {
	if g.quit {
		return errQuit
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.setPaused(!g.paused)
	}
	g.drainReloads()

	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	g.world.SetDeltaTime(1 / float64(ebiten.TPS()))
	g.scheduler.Update(g.world)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	bounds := screen.Bounds()
	if g.offscreen == nil || g.offscreen.Bounds() != bounds {
		if g.offscreen != nil {
			g.offscreen.Deallocate()
		}
		g.offscreen = ebiten.NewImage(bounds.Dx(), bounds.Dy())
	}
	g.offscreen.Clear()

	g.render.Draw(g.world, g.offscreen)
	g.scheduler.Draw(g.world, g.offscreen)
	g.overlay.Draw(g.world, screen, g.offscreen)

	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

func (g *Game) setPaused(paused bool) {
	g.paused = paused
	if paused {
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
	} else {
		ebiten.SetCursorMode(ebiten.CursorModeCaptured)
	}
}

// drainReloads applies every prefab change the watcher has seen since the
// last frame. Only content changes trigger a reload.
func (g *Game) drainReloads() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name := <-g.watcher.Events:
			g.reload(name)
		case err := <-g.watcher.Errors:
			g.logger.Warn("prefab watcher", zap.Error(err))
		default:
			return
		}
	}
}

func (g *Game) reload(name string) {
	load := prefabs.Load
	if strings.HasPrefix(name, "scripts/") {
		load = prefabs.LoadScript
	}
	data, err := load(name)
	if err != nil {
		g.logger.Warn("reload skipped", zap.String("prefab", name), zap.Error(err))
		return
	}
	if !g.fingerprints.Changed(name, data) {
		return
	}

	log := g.logger.With(zap.String("prefab", name))
	switch {
	case strings.HasPrefix(name, "scripts/"):
		g.pickup.InvalidateScripts()
		log.Info("pickup scripts reloaded")
	case name == "player.yaml":
		n, err := entity.ReloadLocomotion(g.world, name)
		if err != nil {
			log.Error("locomotion reload failed", zap.Error(err))
			return
		}
		log.Info("locomotion reloaded", zap.Int("players", n))
	case name == "overlay.yaml":
		n, err := entity.ReloadOverlay(g.world, name)
		if err != nil {
			log.Error("overlay reload failed", zap.Error(err))
			return
		}
		log.Info("overlay reloaded", zap.Int("overlays", n))
	default:
		log.Info("prefab changed; restart to apply")
	}
}

func (g *Game) Close() error {
	if g.cancel != nil {
		g.cancel()
	}
	if g.watcher != nil {
		return g.watcher.Close()
	}
	return nil
}
