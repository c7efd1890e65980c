package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/mojom"
	"github.com/wippyai/mojom/config"
	"github.com/wippyai/mojom/idl"
	"github.com/wippyai/mojom/idl/ast"
	"github.com/wippyai/mojom/ir"
	"github.com/wippyai/mojom/loader"
	"github.com/wippyai/mojom/module"
)

type mode int

const (
	modeLayout mode = iota
	modeTree
	modeIR
)

type options struct {
	cfg    config.Config
	file   string
	mode   mode
	fromIR bool
	color  bool
	force  bool
}

func main() {
	var (
		mojomFile   = flag.String("file", "", "Path to the .mojom file (or the IR file with -from-ir)")
		showTree    = flag.Bool("tree", false, "Print the parse tree")
		showIR      = flag.Bool("ir", false, "Print the IR record as YAML")
		showLayout  = flag.Bool("layout", false, "Print packed struct layouts (default)")
		format      = flag.String("format", "", "Layout output format: text or yaml")
		configFile  = flag.String("config", "", "Path to mojom.toml (default: ./mojom.toml if present)")
		importPaths = flag.String("I", "", "Import search paths (comma-separated)")
		dialect     = flag.String("dialect", "", "Grammar dialect: modern or legacy")
		fromIR      = flag.Bool("from-ir", false, "Read an IR record written by -ir instead of mojom source")
		watch       = flag.Bool("watch", false, "Re-run whenever the file or its imports change")
		interactive = flag.Bool("i", false, "Interactive layout browser")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	if *mojomFile == "" && flag.NArg() > 0 {
		*mojomFile = flag.Arg(0)
	}
	if *mojomFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: mojom [-tree | -ir | -layout] [-format yaml] [-I dir,...] <file.mojom>")
		fmt.Fprintln(os.Stderr, "       mojom -from-ir <file.yaml>")
		fmt.Fprintln(os.Stderr, "       mojom -watch <file.mojom>")
		fmt.Fprintln(os.Stderr, "       mojom -i <file.mojom>  (interactive mode)")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *format != "" {
		cfg.Output.Format = strings.ToLower(*format)
	}
	if *dialect != "" {
		cfg.Dialect = strings.ToLower(*dialect)
	}
	if *importPaths != "" {
		cfg.ImportPaths = append(strings.Split(*importPaths, ","), cfg.ImportPaths...)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	mojom.SetLogger(log)

	o := options{
		cfg:    cfg,
		file:   *mojomFile,
		fromIR: *fromIR,
		color:  colorEnabled(cfg.Output.Color, term.IsTerminal(int(os.Stdout.Fd()))),
		force:  cfg.Output.Color == config.ColorAlways,
	}
	switch {
	case *showTree:
		o.mode = modeTree
	case *showIR:
		o.mode = modeIR
	case *showLayout:
		o.mode = modeLayout
	}

	if *interactive {
		if err := runInteractive(o); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := runWatch(ctx, os.Stdout, o); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if _, err := run(os.Stdout, o); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads path, or mojom.toml from the working directory when path
// is empty.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, err
	}
	return config.Find(wd)
}

func newLogger(cfg config.Config, verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zc.DisableStacktrace = true
	return zc.Build()
}

// run executes one pass over o.file and returns the files it read, which
// watch mode observes.
func run(w io.Writer, o options) ([]string, error) {
	switch o.mode {
	case modeTree:
		tree, err := parseFile(o)
		if err != nil {
			return []string{o.file}, err
		}
		_, err = fmt.Fprintln(w, ast.Format(tree))
		return []string{o.file}, err

	case modeIR:
		tree, err := parseFile(o)
		if err != nil {
			return []string{o.file}, err
		}
		rec, err := ir.Translate(tree, o.file)
		if err != nil {
			return []string{o.file}, err
		}
		data, err := ir.Marshal(rec)
		if err != nil {
			return []string{o.file}, err
		}
		_, err = w.Write(data)
		return []string{o.file}, err
	}

	m, files, err := compile(o)
	if err != nil {
		return files, err
	}
	return files, renderLayout(w, m, o.cfg.Output.Format, newPalette(w, o.color, o.force))
}

func parseFile(o options) (*ast.File, error) {
	data, err := os.ReadFile(o.file)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return idl.ParseDialect(o.file, string(data), o.cfg.ParsedDialect())
}

// compile builds and packs o.file with its imports.
func compile(o options) (*module.Module, []string, error) {
	l := loader.New(
		loader.WithDialect(o.cfg.ParsedDialect()),
		loader.WithImportPaths(o.cfg.ImportPaths...),
	)
	files := func() []string {
		abs, err := filepath.Abs(o.file)
		if err != nil {
			abs = o.file
		}
		return append([]string{abs}, l.Files()...)
	}

	if o.fromIR {
		data, err := os.ReadFile(o.file)
		if err != nil {
			return nil, files(), fmt.Errorf("read file: %w", err)
		}
		m, err := mojom.CompileIR(data, l)
		return m, files(), err
	}

	m, err := l.Load(o.file)
	return m, files(), err
}
