package prefabs

import (
	"maps"

	"github.com/milk9111/liminal/locomotion"
	"gopkg.in/yaml.v3"
)

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// MergeComponents overlays override onto base. Map-valued components are
// merged key by key; anything else replaces the base value.
func MergeComponents(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(override))
	maps.Copy(out, base)
	for name, raw := range override {
		baseMap, okBase := out[name].(map[string]any)
		overMap, okOver := raw.(map[string]any)
		if okBase && okOver {
			merged := make(map[string]any, len(baseMap)+len(overMap))
			maps.Copy(merged, baseMap)
			maps.Copy(merged, overMap)
			out[name] = merged
			continue
		}
		out[name] = raw
	}
	return out
}

type TransformComponentSpec struct {
	X   float64 `yaml:"x"`
	Y   float64 `yaml:"y"`
	Z   float64 `yaml:"z"`
	Yaw float64 `yaml:"yaw"`
}

type CharacterBodyComponentSpec struct {
	Radius  float64 `yaml:"radius"`
	Height  float64 `yaml:"height"`
	CenterY float64 `yaml:"center_y"`
}

type PivotOffsetSpec struct {
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// LocomotionComponentSpec is the yaml form of locomotion.Config. Absent
// fields keep the defaults; absent camera offsets and heights are taken
// from the scene at construction time.
type LocomotionComponentSpec struct {
	WalkSpeed          *float64         `yaml:"walk_speed"`
	RunSpeed           *float64         `yaml:"run_speed"`
	CrouchSpeed        *float64         `yaml:"crouch_speed"`
	Sensitivity        *float64         `yaml:"sensitivity"`
	Gravity            *float64         `yaml:"gravity"`
	StandMinPitch      *float64         `yaml:"stand_min_pitch"`
	CrouchMinPitch     *float64         `yaml:"crouch_min_pitch"`
	StandCameraOffset  *PivotOffsetSpec `yaml:"stand_camera_offset"`
	CrouchCameraOffset *PivotOffsetSpec `yaml:"crouch_camera_offset"`
	StandHeight        *float64         `yaml:"stand_height"`
	CrouchHeight       *float64         `yaml:"crouch_height"`
	CameraRate         *float64         `yaml:"camera_rate"`
	HeightRate         *float64         `yaml:"height_rate"`
	AnimRate           *float64         `yaml:"anim_rate"`
	IdleThreshold      *float64         `yaml:"idle_threshold"`
	GroundBias         *float64         `yaml:"ground_bias"`
}

// Config maps the yaml fields onto locomotion.DefaultConfig. Offsets and heights
// the yaml leaves out are unset rather than defaulted.
func (s LocomotionComponentSpec) Config() locomotion.Config {
	cfg := locomotion.DefaultConfig()
	cfg.StandCameraOffset = nil
	cfg.CrouchCameraOffset = nil
	cfg.StandHeight = 0
	cfg.CrouchHeight = 0

	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&cfg.WalkSpeed, s.WalkSpeed)
	set(&cfg.RunSpeed, s.RunSpeed)
	set(&cfg.CrouchSpeed, s.CrouchSpeed)
	set(&cfg.Sensitivity, s.Sensitivity)
	set(&cfg.Gravity, s.Gravity)
	set(&cfg.StandMinPitch, s.StandMinPitch)
	set(&cfg.CrouchMinPitch, s.CrouchMinPitch)
	set(&cfg.StandHeight, s.StandHeight)
	set(&cfg.CrouchHeight, s.CrouchHeight)
	set(&cfg.CameraRate, s.CameraRate)
	set(&cfg.HeightRate, s.HeightRate)
	set(&cfg.AnimRate, s.AnimRate)
	set(&cfg.IdleThreshold, s.IdleThreshold)
	set(&cfg.GroundBias, s.GroundBias)

	if o := s.StandCameraOffset; o != nil {
		cfg.StandCameraOffset = &locomotion.PivotOffset{Y: o.Y, Z: o.Z}
	}
	if o := s.CrouchCameraOffset; o != nil {
		cfg.CrouchCameraOffset = &locomotion.PivotOffset{Y: o.Y, Z: o.Z}
	}
	return cfg
}

type CameraRigComponentSpec struct {
	OffsetY float64 `yaml:"offset_y"`
	OffsetZ float64 `yaml:"offset_z"`
	Pitch   float64 `yaml:"pitch"`
	FOV     float64 `yaml:"fov"`
}

type LightComponentSpec struct {
	Intensity float64   `yaml:"intensity"`
	Range     float64   `yaml:"range"`
	Color     YAMLColor `yaml:"color"`
}

type EmissiveComponentSpec struct {
	Tint  [3]float64 `yaml:"tint"`
	Value float64    `yaml:"value"`
}

type FlickerComponentSpec struct {
	MinIntensity float64  `yaml:"min_intensity"`
	MaxIntensity float64  `yaml:"max_intensity"`
	MinDelay     float64  `yaml:"min_delay"`
	MaxDelay     float64  `yaml:"max_delay"`
	MinEmission  float64  `yaml:"min_emission"`
	MaxEmission  float64  `yaml:"max_emission"`
	Smooth       bool     `yaml:"smooth"`
	SmoothSpeed  float64  `yaml:"smooth_speed"`
	BlipChance   *float64 `yaml:"blip_chance"`
}

type PickupComponentSpec struct {
	Name   string  `yaml:"name"`
	Radius float64 `yaml:"radius"`
	Height float64 `yaml:"height"`
	Script string  `yaml:"script"`
}

type PromptComponentSpec struct {
	Text string `yaml:"text"`
}

type VHSOverlayComponentSpec struct {
	YRate        *float64 `yaml:"y_rate"`
	XRate        *float64 `yaml:"x_rate"`
	RerollChance *float64 `yaml:"reroll_chance"`
	Enabled      *bool    `yaml:"enabled"`
}

// AudioClipSpec is one synthesized sound in an entity's audio list.
type AudioClipSpec struct {
	Name     string  `yaml:"name"`
	Freq     float64 `yaml:"freq"`
	Duration float64 `yaml:"duration"`
	Noise    float64 `yaml:"noise"`
	Decay    float64 `yaml:"decay"`
	Volume   float64 `yaml:"volume"`
}

type FootstepsComponentSpec struct {
	Sound    string  `yaml:"sound"`
	Interval float64 `yaml:"interval"`
}
