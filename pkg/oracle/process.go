package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/graph-motif-service/pkg/digraph"
	"github.com/gilchrisn/graph-motif-service/pkg/errs"
	"github.com/gilchrisn/graph-motif-service/pkg/models"
)

// Transport selects how graphs and results are exchanged with the tool
type Transport string

const (
	// TransportWorkdir writes the graph to a file inside a fresh temporary
	// directory and reads the result file back from the same directory
	TransportWorkdir Transport = "workdir"
	// TransportStdio pipes the graph to stdin and reads the result from stdout
	TransportStdio Transport = "stdio"
)

// Default relative paths used by the census tool inside its working directory
const (
	DefaultInputFile  = "result/OUTPUT.txt"
	DefaultOutputFile = "result/MotifCount.txt"
	DefaultTimeout    = 10 * time.Minute
	waitDelay         = 5 * time.Second
)

// ProcessConfig configures a ProcessOracle
type ProcessConfig struct {
	Path       string        // census executable
	Args       []string      // extra arguments placed before the motif size
	Transport  Transport     // workdir or stdio
	InputFile  string        // graph file relative to the working directory
	OutputFile string        // result file relative to the working directory
	Timeout    time.Duration // per invocation
	TempRoot   string        // parent of per-call working directories, "" for os.TempDir
}

// ProcessOracle runs an external census tool once per graph. Each call is
// isolated: workdir transport uses a private temporary directory and stdio
// transport uses private pipes, so concurrent calls never share state.
type ProcessOracle struct {
	config ProcessConfig
	logger zerolog.Logger
}

// NewProcessOracle validates cfg and resolves the executable path
func NewProcessOracle(cfg ProcessConfig, logger zerolog.Logger) (*ProcessOracle, error) {
	if cfg.Path == "" {
		return nil, errs.InvalidConfiguration("oracle", "census executable path is required")
	}
	if cfg.Transport == "" {
		cfg.Transport = TransportWorkdir
	}
	if cfg.Transport != TransportWorkdir && cfg.Transport != TransportStdio {
		return nil, errs.InvalidConfiguration("oracle", "unknown transport %q", cfg.Transport)
	}
	if cfg.InputFile == "" {
		cfg.InputFile = DefaultInputFile
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = DefaultOutputFile
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	// Working directories change per call, so pin relative paths now
	if strings.ContainsRune(cfg.Path, filepath.Separator) {
		abs, err := filepath.Abs(cfg.Path)
		if err != nil {
			return nil, errs.InvalidConfiguration("oracle", "resolve %s: %v", cfg.Path, err)
		}
		cfg.Path = abs
	} else {
		resolved, err := exec.LookPath(cfg.Path)
		if err != nil {
			return nil, errs.InvalidConfiguration("oracle", "census executable not found: %v", err)
		}
		cfg.Path = resolved
	}

	return &ProcessOracle{
		config: cfg,
		logger: logger.With().Str("component", "process_oracle").Logger(),
	}, nil
}

// Config returns the effective configuration
func (o *ProcessOracle) Config() ProcessConfig {
	return o.config
}

// Census runs the census tool on g
func (o *ProcessOracle) Census(ctx context.Context, g *digraph.Digraph, motifSize int) (*models.Census, error) {
	if motifSize < 2 {
		return nil, errs.InvalidConfiguration("census", "motif size must be at least 2, got %d", motifSize)
	}

	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	var (
		census *models.Census
		err    error
	)
	switch o.config.Transport {
	case TransportStdio:
		census, err = o.runStdio(ctx, g, motifSize)
	default:
		census, err = o.runWorkdir(ctx, g, motifSize)
	}
	if err != nil {
		return nil, errs.OracleFailure("census", err)
	}
	return census, nil
}

func (o *ProcessOracle) command(ctx context.Context, motifSize int) *exec.Cmd {
	args := append(append([]string{}, o.config.Args...), strconv.Itoa(motifSize))
	cmd := exec.CommandContext(ctx, o.config.Path, args...)
	cmd.WaitDelay = waitDelay
	return cmd
}

func (o *ProcessOracle) runWorkdir(ctx context.Context, g *digraph.Digraph, motifSize int) (*models.Census, error) {
	dir, err := os.MkdirTemp(o.config.TempRoot, "census-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create working directory: %w", err)
	}
	defer os.RemoveAll(dir)

	inputPath := filepath.Join(dir, o.config.InputFile)
	outputPath := filepath.Join(dir, o.config.OutputFile)
	for _, p := range []string{inputPath, outputPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(p), err)
		}
	}

	input, err := os.Create(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph file: %w", err)
	}
	if err := WriteInput(input, g); err != nil {
		input.Close()
		return nil, fmt.Errorf("failed to write graph file: %w", err)
	}
	if err := input.Close(); err != nil {
		return nil, fmt.Errorf("failed to close graph file: %w", err)
	}

	cmd := o.command(ctx, motifSize)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	o.logger.Debug().
		Str("dir", dir).
		Int("nodes", g.Order()).
		Int("edges", g.Size()).
		Int("motif_size", motifSize).
		Msg("Running census tool")

	if err := o.run(ctx, cmd, &stderr); err != nil {
		return nil, err
	}

	output, err := os.Open(outputPath)
	if err != nil {
		return nil, fmt.Errorf("census result missing: %w", err)
	}
	defer output.Close()

	census, err := ParseOutput(output)
	if err != nil {
		return nil, fmt.Errorf("malformed census result: %w", err)
	}
	return census, nil
}

func (o *ProcessOracle) runStdio(ctx context.Context, g *digraph.Digraph, motifSize int) (*models.Census, error) {
	var stdin, stdout, stderr bytes.Buffer
	if err := WriteInput(&stdin, g); err != nil {
		return nil, fmt.Errorf("failed to serialize graph: %w", err)
	}

	cmd := o.command(ctx, motifSize)
	cmd.Stdin = &stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := o.run(ctx, cmd, &stderr); err != nil {
		return nil, err
	}

	census, err := ParseOutput(&stdout)
	if err != nil {
		return nil, fmt.Errorf("malformed census result: %w", err)
	}
	return census, nil
}

func (o *ProcessOracle) run(ctx context.Context, cmd *exec.Cmd, stderr *bytes.Buffer) error {
	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return fmt.Errorf("census tool timed out after %s", o.config.Timeout)
		}
		return fmt.Errorf("census tool cancelled: %w", ctxErr)
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("census tool failed: %w: %s", err, msg)
		}
		return fmt.Errorf("census tool failed: %w", err)
	}
	return nil
}
