package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/caarlos0/env/v11"
)

// Config is the runtime configuration. Environment variables set the
// defaults and command-line flags override them.
type Config struct {
	Debug       bool   `env:"LIMINAL_DEBUG"`
	BaseMonitor bool   `env:"LIMINAL_MONITOR_BASE"`
	PrefabDir   string `env:"LIMINAL_PREFAB_DIR" envDefault:"prefabs"`
	HotReload   bool   `env:"LIMINAL_HOT_RELOAD" envDefault:"true"`
	Seed        uint64 `env:"LIMINAL_SEED"`
	Scene       string `env:"LIMINAL_SCENE"       envDefault:"scene.yaml"`
	ClipFrames  int    `env:"LIMINAL_CLIP_FRAMES" envDefault:"24"`
	NoOverlay   bool   `env:"LIMINAL_NO_OVERLAY"`
}

func LoadConfig(args []string, stderr io.Writer) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("liminal", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug mode")
	fs.BoolVar(&cfg.BaseMonitor, "m", cfg.BaseMonitor, "use base monitor instead of primary (for multi-monitor setups)")
	fs.StringVar(&cfg.PrefabDir, "prefabs", cfg.PrefabDir, "directory whose prefab files override the embedded ones (empty disables)")
	fs.BoolVar(&cfg.HotReload, "hot", cfg.HotReload, "reload prefabs and scripts when they change on disk")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for flicker and overlay (0 picks one)")
	fs.StringVar(&cfg.Scene, "scene", cfg.Scene, "scene prefab to load")
	fs.IntVar(&cfg.ClipFrames, "clip-frames", cfg.ClipFrames, "number of generated overlay noise frames")
	fs.BoolVar(&cfg.NoOverlay, "no-overlay", cfg.NoOverlay, "disable the tape overlay")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.ClipFrames <= 0 {
		return Config{}, fmt.Errorf("clip-frames must be positive, got %d", cfg.ClipFrames)
	}
	if cfg.Scene == "" {
		return Config{}, fmt.Errorf("scene must not be empty")
	}
	return cfg, nil
}
