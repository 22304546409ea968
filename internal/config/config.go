// Package config loads the YAML configuration for the demo.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Camera  CameraConfig  `yaml:"camera"`
	Physics PhysicsConfig `yaml:"physics"`
	Scene   SceneConfig   `yaml:"scene"`
	Debug   DebugConfig   `yaml:"debug"`
	Logging LoggingConfig `yaml:"logging"`
}

type WindowConfig struct {
	Title         string  `yaml:"title"`
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	MaxPixelRatio float64 `yaml:"max_pixel_ratio"`
	TPS           int     `yaml:"tps"`
}

type CameraConfig struct {
	FOV      float64    `yaml:"fov"`
	Near     float64    `yaml:"near"`
	Far      float64    `yaml:"far"`
	Position [3]float64 `yaml:"position"`
	Target   [3]float64 `yaml:"target"`
	Damping  float64    `yaml:"damping"`
}

type PhysicsConfig struct {
	Gravity          [3]float64 `yaml:"gravity"`
	FixedStep        float64    `yaml:"fixed_step"`
	MaxSubSteps      int        `yaml:"max_sub_steps"`
	Broadphase       string     `yaml:"broadphase"` // "sap" or "naive"
	AllowSleep       bool       `yaml:"allow_sleep"`
	Friction         float64    `yaml:"friction"`
	Restitution      float64    `yaml:"restitution"`
	SolverIterations int        `yaml:"solver_iterations"`
}

type SceneConfig struct {
	Layout         string  `yaml:"layout"` // "grid" or "tower"
	FloorSize      float64 `yaml:"floor_size"`
	BoxSize        float64 `yaml:"box_size"`
	BoxMass        float64 `yaml:"box_mass"`
	SphereRadius   float64 `yaml:"sphere_radius"`
	SphereMass     float64 `yaml:"sphere_mass"`
	SphereDamping  float64 `yaml:"sphere_damping"`
	SphereSegments int     `yaml:"sphere_segments"`
	Shadows        bool    `yaml:"shadows"`
}

type DebugConfig struct {
	ForceStrength float64 `yaml:"force_strength"`
	ForceDT       float64 `yaml:"force_dt"`
	Picking       bool    `yaml:"picking"`
	HUD           bool    `yaml:"hud"`
	Wireframe     bool    `yaml:"wireframe"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration of the stock demo.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:         "cubefall",
			Width:         1280,
			Height:        720,
			MaxPixelRatio: 2,
			TPS:           60,
		},
		Camera: CameraConfig{
			FOV:      75,
			Near:     0.1,
			Far:      100,
			Position: [3]float64{3, 5, -12},
			Damping:  0.1,
		},
		Physics: PhysicsConfig{
			Gravity:          [3]float64{0, -9.82, 0},
			FixedStep:        1.0 / 60,
			MaxSubSteps:      3,
			Broadphase:       "sap",
			AllowSleep:       true,
			Friction:         0.1,
			Restitution:      0.7,
			SolverIterations: 10,
		},
		Scene: SceneConfig{
			Layout:         "grid",
			FloorSize:      20,
			BoxSize:        1,
			BoxMass:        1,
			SphereRadius:   0.5,
			SphereMass:     2,
			SphereDamping:  0.5,
			SphereSegments: 20,
			Shadows:        true,
		},
		Debug: DebugConfig{
			ForceStrength: 500,
			ForceDT:       0.5,
			Picking:       true,
			HUD:           true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path on top of Default and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Window.MaxPixelRatio <= 0:
		return fmt.Errorf("%w: max_pixel_ratio %v", ErrInvalid, c.Window.MaxPixelRatio)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: camera near/far %v/%v", ErrInvalid, c.Camera.Near, c.Camera.Far)
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return fmt.Errorf("%w: camera fov %v", ErrInvalid, c.Camera.FOV)
	case c.Physics.FixedStep <= 0:
		return fmt.Errorf("%w: fixed_step %v", ErrInvalid, c.Physics.FixedStep)
	case c.Physics.MaxSubSteps < 1:
		return fmt.Errorf("%w: max_sub_steps %d", ErrInvalid, c.Physics.MaxSubSteps)
	case c.Physics.SolverIterations < 1:
		return fmt.Errorf("%w: solver_iterations %d", ErrInvalid, c.Physics.SolverIterations)
	}
	switch c.Physics.Broadphase {
	case "sap", "naive":
	default:
		return fmt.Errorf("%w: broadphase %q", ErrInvalid, c.Physics.Broadphase)
	}
	switch c.Scene.Layout {
	case "grid", "tower":
	default:
		return fmt.Errorf("%w: scene layout %q", ErrInvalid, c.Scene.Layout)
	}
	return nil
}
