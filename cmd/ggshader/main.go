// Command ggshader generates WGSL fragment shaders for the paints in a
// description file.
//
// Usage:
//
//	ggshader -in paints.yaml [-out dir] [-spirv] [-stats] [-j n] [-v]
//
// Without -out the programs are printed to standard output.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/gogpu/ggshader"
	"github.com/gogpu/ggshader/backend"
	"github.com/gogpu/ggshader/internal/desc"
	"github.com/gogpu/ggshader/internal/workpool"
	"github.com/gogpu/ggshader/shaders"
)

type config struct {
	in      string
	out     string
	backend string
	jobs    int
	spirv   bool
	stats   bool
	verbose bool
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("ggshader: ")
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func parseFlags(args []string, stderr io.Writer) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("ggshader", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.in, "in", "", "paint description (.yaml, .yml or .json)")
	fs.StringVar(&cfg.out, "out", "", "output directory; programs go to stdout if empty")
	fs.StringVar(&cfg.backend, "backend", "", "binding emitter; empty picks the highest priority registered one")
	fs.IntVar(&cfg.jobs, "j", 0, "programs generated in parallel; 0 means GOMAXPROCS")
	fs.BoolVar(&cfg.spirv, "spirv", false, "also compile each program to SPIR-V (needs -out)")
	fs.BoolVar(&cfg.stats, "stats", false, "print statistics as JSON")
	fs.BoolVar(&cfg.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.in == "" {
		return cfg, errors.New("missing -in")
	}
	if cfg.spirv && cfg.out == "" {
		return cfg, errors.New("-spirv needs -out")
	}
	return cfg, nil
}

// emitter returns the emitter registered as name, or the default one when
// name is empty.
func emitter(name string) (backend.Emitter, error) {
	if name != "" {
		return backend.Lookup(name)
	}
	if e := backend.Default(); e != nil {
		return e, nil
	}
	return nil, fmt.Errorf("%w: none registered", backend.ErrBackendNotAvailable)
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if cfg.verbose {
		ggshader.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer ggshader.SetLogger(nil)
	}

	em, err := emitter(cfg.backend)
	if err != nil {
		return err
	}

	file, err := desc.Load(cfg.in)
	if err != nil {
		return err
	}
	paints, err := file.Build()
	if err != nil {
		return err
	}

	if cfg.out != "" {
		if err := os.MkdirAll(cfg.out, 0o755); err != nil {
			return err
		}
	}

	// IDs follow declaration order; only generation runs in parallel.
	ctx := ggshader.NewContext(ggshader.WithEmitter(em))
	ids := make([]shaders.UniquePaintParamsID, len(paints))
	for i, p := range paints {
		params, err := ctx.AddPaint(p.Paint)
		if err != nil {
			return fmt.Errorf("paint %q: %w", p.Name, err)
		}
		ids[i] = params.ID
	}

	progs := make([]*ggshader.Program, len(paints))
	jobs := make([]func() error, len(paints))
	for i, p := range paints {
		jobs[i] = func() error {
			prog, err := ctx.Program(ids[i])
			if err != nil {
				return fmt.Errorf("paint %q: %w", p.Name, err)
			}
			progs[i] = prog
			return nil
		}
	}
	pool := workpool.New(cfg.jobs)
	err = pool.Run(jobs)
	pool.Close()
	if err != nil {
		return err
	}

	rep := report{Paints: make([]paintReport, 0, len(paints))}
	for i, p := range paints {
		prog := progs[i]
		if err := emit(cfg, stdout, p.Name, prog); err != nil {
			return err
		}
		rep.Paints = append(rep.Paints, paintReport{
			Name:         p.Name,
			ID:           prog.ID,
			Blocks:       prog.Info.Len(),
			UniformBytes: prog.Layout.Size,
			Textures:     len(prog.TextureEntries),
			ShaderBlends: prog.Blend.ShaderBlends,
		})
	}

	if cfg.stats {
		rep.Stats = ctx.Stats()
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(stdout, "%s\n", data); err != nil {
			return err
		}
	}
	return nil
}

// emit writes one program to the output directory or to stdout.
func emit(cfg config, stdout io.Writer, name string, prog *ggshader.Program) error {
	if cfg.out == "" {
		_, err := fmt.Fprintf(stdout, "// %s (program %d)\n%s\n", name, prog.ID, prog.WGSL)
		return err
	}
	path := filepath.Join(cfg.out, name+".wgsl")
	if err := os.WriteFile(path, []byte(prog.WGSL), 0o644); err != nil {
		return err
	}
	if !cfg.spirv {
		return nil
	}
	spv, err := compileSPIRV(prog.WGSL)
	if err != nil {
		return fmt.Errorf("paint %q: %w", name, err)
	}
	return os.WriteFile(filepath.Join(cfg.out, name+".spv"), spv, 0o644)
}

type report struct {
	Paints []paintReport  `json:"paints"`
	Stats  ggshader.Stats `json:"stats"`
}

type paintReport struct {
	Name         string                      `json:"name"`
	ID           shaders.UniquePaintParamsID `json:"id"`
	Blocks       int                         `json:"blocks"`
	UniformBytes int                         `json:"uniformBytes"`
	Textures     int                         `json:"textures"`
	ShaderBlends bool                        `json:"shaderBlends"`
}
