package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/mattn/go-isatty"

	ms "github.com/vltr/middle-schema"
	"github.com/vltr/middle-schema/jsonschema"
	"github.com/vltr/middle-schema/modeldef"
	"github.com/vltr/middle-schema/openapi"
	"github.com/vltr/middle-schema/skeleton"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fatal(os.Stderr, err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `middleschema CLI

Usage:
  middleschema render -i 'defs/**/*.yaml' [-model A,B] [-format json|yaml|jsonschema] [-o out]
  middleschema check  -i 'defs/**/*.yaml'

Notes:
  - -i may be repeated; patterns support ** globs.
  - render writes an OpenAPI 3 document holding the component schemas.
  - -format jsonschema writes one model as a standalone JSON Schema.`)
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		usage(stderr)
		return errUsage
	}
	switch args[0] {
	case "render":
		return renderCmd(args[1:], stdout, stderr)
	case "check":
		return checkCmd(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	}
	usage(stderr)
	return errUsage
}

// globs collects repeated -i flags.
type globs []string

func (g *globs) String() string { return strings.Join(*g, ",") }

func (g *globs) Set(v string) error {
	*g = append(*g, v)
	return nil
}

type commonFlags struct {
	inputs  globs
	verbose bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.Var(&c.inputs, "i", "definition files (glob, repeatable)")
	fs.BoolVar(&c.verbose, "v", false, "enable debug logs")
}

func renderCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		common          commonFlags
		modelsCSV       string
		format          string
		out             string
		modelComponents bool
		enumComponents  bool
		title           string
		version         string
	)
	common.register(fs)
	fs.StringVar(&modelsCSV, "model", "", "comma-separated model names to render (default: all)")
	fs.StringVar(&format, "format", "json", "output format: json, yaml or jsonschema")
	fs.StringVar(&out, "o", "", "output filename (default: stdout)")
	fs.BoolVar(&modelComponents, "model-components", true, "extract models into components")
	fs.BoolVar(&enumComponents, "enum-components", true, "extract enums into components")
	fs.StringVar(&title, "title", "middleschema", "info.title of the document")
	fs.StringVar(&version, "version", "0.0.0", "info.version of the document")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if len(common.inputs) == 0 {
		fs.Usage()
		return errUsage
	}
	logger := newLogger(stderr, common.verbose)

	defs, err := load(common.inputs, logger)
	if err != nil {
		return err
	}
	models, err := selectModels(defs, splitCSV(modelsCSV))
	if err != nil {
		return err
	}
	renderer := openapi.NewRenderer(
		openapi.WithModelAsComponent(modelComponents),
		openapi.WithEnumAsComponent(enumComponents),
		openapi.WithLogger(logger),
	)

	var data []byte
	switch format {
	case "json", "yaml":
		doc := openapi.NewDocument(title, version)
		for _, m := range models {
			res, err := renderer.Parse(m)
			if err != nil {
				return err
			}
			if err := doc.Add(m.ModelName(), res); err != nil {
				return err
			}
			logger.Debug("model rendered", slog.String("model", m.ModelName()), slog.Int("schemas", doc.Schemas().Len()))
		}
		if format == "json" {
			data, err = doc.JSON("  ")
		} else {
			data, err = doc.YAML()
		}
		if err != nil {
			return fmt.Errorf("encoding document: %w", err)
		}
	case "jsonschema":
		if len(models) != 1 {
			return fmt.Errorf("-format jsonschema needs exactly one model, got %d", len(models))
		}
		res, err := renderer.Parse(models[0])
		if err != nil {
			return err
		}
		s, err := jsonschema.FromResult(res)
		if err != nil {
			return err
		}
		if data, err = json.MarshalIndent(s, "", "  "); err != nil {
			return fmt.Errorf("encoding schema: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return write(out, data, stdout)
}

func checkCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if len(common.inputs) == 0 {
		fs.Usage()
		return errUsage
	}
	logger := newLogger(stderr, common.verbose)

	defs, err := load(common.inputs, logger)
	if err != nil {
		return err
	}
	var (
		errs      []error
		recursive []string
	)
	for _, m := range defs.Models() {
		sk, err := skeleton.Translate(m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		nodes, cycles := inspect(sk)
		for _, name := range cycles {
			if !slices.Contains(recursive, name) {
				recursive = append(recursive, name)
			}
		}
		logger.Debug("model ok", slog.String("model", m.ModelName()), slog.Int("nodes", nodes))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "ok: %d models, %d enums\n", len(defs.Models()), len(defs.Enums()))
	if len(recursive) > 0 {
		fmt.Fprintf(stdout, "recursive: %s\n", strings.Join(recursive, ", "))
	}
	return nil
}

// inspect counts the nodes of sk and lists the recursive models it reaches.
func inspect(sk *skeleton.Skeleton) (nodes int, recursive []string) {
	sk.Walk(func(n *skeleton.Skeleton) bool {
		nodes++
		if n.Recursive && !slices.Contains(recursive, n.ModelName()) {
			recursive = append(recursive, n.ModelName())
		}
		return true
	})
	return nodes, recursive
}

// load expands the input globs and resolves every matched file together.
func load(patterns []string, logger *slog.Logger) (*modeldef.Definitions, error) {
	var files []string
	seen := map[string]bool{}
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("pattern %q matches no files", pattern)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	logger.Debug("loading definitions", slog.Int("files", len(files)))
	return modeldef.LoadFiles(files...)
}

func selectModels(defs *modeldef.Definitions, names []string) ([]ms.Model, error) {
	if len(names) == 0 {
		all := defs.Models()
		out := make([]ms.Model, len(all))
		for i, m := range all {
			out[i] = m
		}
		return out, nil
	}
	out := make([]ms.Model, 0, len(names))
	for _, n := range names {
		m, ok := defs.Model(n)
		if !ok {
			return nil, fmt.Errorf("unknown model %q", n)
		}
		out = append(out, m)
	}
	return out, nil
}

func write(path string, data []byte, stdout io.Writer) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// fatal prints err, in red when w is a terminal.
func fatal(w io.Writer, err error) {
	c := color.New(color.FgRed, color.Bold)
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	c.Fprint(w, "error:")
	fmt.Fprintf(w, " %v\n", err)
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
