// Command simdump runs the demo scene on a virtual clock and writes the final
// body states as YAML.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"cubefall/app"
	"cubefall/hal"
	"cubefall/internal/config"
	"cubefall/internal/logger"
	"cubefall/sim"

	"gopkg.in/yaml.v3"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a YAML config file.")
		outPath    = flag.String("out", "", "Output file (stdout when empty).")
		frames     = flag.Int("frames", 300, "Number of frames to simulate.")
		fps        = flag.Float64("fps", 60, "Virtual display refresh rate.")
		forceAt    = flag.Int("force-at", 0, "Apply the debug force before frame N (0 = never).")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fatalf("%v", err)
		}
		cfg = *loaded
	}
	logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: os.Stderr})

	d, err := run(cfg, runOptions{Frames: *frames, FPS: *fps, ForceAt: *forceAt})
	if err != nil {
		fatalf("run: %v", err)
	}

	if *outPath == "" {
		if err := writeDump(os.Stdout, d); err != nil {
			fatalf("write: %v", err)
		}
		return
	}
	if err := writeFile(*outPath, d); err != nil {
		fatalf("write: %v", err)
	}
}

// writeFile writes d to path. The file is closed on every return path.
func writeFile(path string, d dump) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeDump(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

type runOptions struct {
	Frames  int
	FPS     float64
	ForceAt int
}

type dump struct {
	Frames    uint64      `yaml:"frames"`
	Steps     int         `yaml:"steps"`
	WorldTime float64     `yaml:"world_time"`
	Sleeping  int         `yaml:"sleeping"`
	Bodies    []bodyState `yaml:"bodies"`
}

type bodyState struct {
	ID         int        `yaml:"id"`
	Kind       string     `yaml:"kind"`
	Sleep      string     `yaml:"sleep"`
	Position   [3]float64 `yaml:"position,flow"`
	Quaternion [4]float64 `yaml:"quaternion,flow"`
	Velocity   [3]float64 `yaml:"velocity,flow"`
}

// run simulates opts.Frames frames of the demo scene. Frame i sees the clock
// reading i/FPS, so the result does not depend on wall time.
func run(cfg config.Config, opts runOptions) (dump, error) {
	if opts.Frames < 0 {
		return dump{}, fmt.Errorf("negative frame count %d", opts.Frames)
	}
	if opts.FPS <= 0 {
		return dump{}, fmt.Errorf("fps must be positive, got %v", opts.FPS)
	}
	cfg.Debug.HUD = false
	cfg.Debug.Picking = false

	s, err := sim.New(cfg, hal.NewFramebuffer(cfg.Window.Width/4, cfg.Window.Height/4))
	if err != nil {
		return dump{}, err
	}
	defer s.Close()
	app.BuildScene(s, cfg.Scene)

	for i := 1; i <= opts.Frames; i++ {
		if i == opts.ForceAt {
			s.ApplyDebugForce()
		}
		if err := s.Tick(float64(i) / opts.FPS); err != nil {
			return dump{}, fmt.Errorf("frame %d: %w", i, err)
		}
	}

	st := s.Stats()
	d := dump{
		Frames:    st.Frames,
		Steps:     s.World().StepNumber(),
		WorldTime: st.WorldTime,
		Sleeping:  st.Sleeping,
	}
	for _, p := range s.Registry().Pairs() {
		b := p.Body
		q := b.Quaternion
		d.Bodies = append(d.Bodies, bodyState{
			ID:         b.ID,
			Kind:       p.Kind.String(),
			Sleep:      b.SleepState().String(),
			Position:   b.Position,
			Quaternion: [4]float64{q.V[0], q.V[1], q.V[2], q.W},
			Velocity:   b.Velocity,
		})
	}
	return d, nil
}

func writeDump(w io.Writer, d dump) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}
