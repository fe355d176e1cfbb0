package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// SceneSpec lays out a level: its floor, walls and the prefab instances
// placed in it.
type SceneSpec struct {
	Name          string          `yaml:"name"`
	FloorY        float64         `yaml:"floor_y"`
	WallThickness float64         `yaml:"wall_thickness"`
	Walls         []WallSpec      `yaml:"walls"`
	Entities      []PlacementSpec `yaml:"entities"`
}

// WallSpec is a wall between two floor-plan points.
type WallSpec struct {
	AX float64 `yaml:"ax"`
	AZ float64 `yaml:"az"`
	BX float64 `yaml:"bx"`
	BZ float64 `yaml:"bz"`
}

// PlacementSpec instantiates a prefab. Components are merged over the
// prefab's own, key by key.
type PlacementSpec struct {
	Prefab     string         `yaml:"prefab"`
	Components map[string]any `yaml:"components"`
}

func LoadSceneSpec(filename string) (SceneSpec, error) {
	spec, err := LoadSpec[SceneSpec](filename)
	if err != nil {
		return SceneSpec{}, err
	}
	for i, p := range spec.Entities {
		if strings.TrimSpace(p.Prefab) == "" {
			return SceneSpec{}, fmt.Errorf("prefabs: %s: entity %d has no prefab", filename, i)
		}
	}
	return spec, nil
}

type YAMLColor struct {
	color.Color
}

// ToRGBA converts the parsed colour, zero when unset.
func (c YAMLColor) ToRGBA() color.RGBA {
	if c.Color == nil {
		return color.RGBA{}
	}
	return color.RGBAModel.Convert(c.Color).(color.RGBA)
}

func (c YAMLColor) MarshalYAML() (any, error) {
	if c.Color == nil {
		return nil, nil
	}
	n := color.NRGBAModel.Convert(c.Color).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A), nil
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
