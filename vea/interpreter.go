package vea

import (
	"context"
	"fmt"
	"log/slog"
)

// Config controls interpreter execution bounds. Zero values mean unbounded.
type Config struct {
	StepQuota        int
	RecursionLimit   int
	OutputLimitBytes int
	Logger           *slog.Logger
}

// Engine runs vea programs under a fixed Config. It holds no per-run state
// and may be shared between goroutines.
type Engine struct {
	config Config
	logger *slog.Logger
}

// Result collects what each stage of Run produced.
type Result struct {
	Tokens  []Token
	Program *Program
	Output  string
}

// NewEngine validates cfg and constructs an Engine.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.StepQuota < 0 {
		return nil, fmt.Errorf("vea: step quota cannot be negative (%d)", cfg.StepQuota)
	}
	if cfg.RecursionLimit < 0 {
		return nil, fmt.Errorf("vea: recursion limit cannot be negative (%d)", cfg.RecursionLimit)
	}
	if cfg.OutputLimitBytes < 0 {
		return nil, fmt.Errorf("vea: output limit cannot be negative (%d)", cfg.OutputLimitBytes)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{config: cfg, logger: cfg.Logger}, nil
}

// MustNewEngine constructs an Engine or panics if the config is invalid.
func MustNewEngine(cfg Config) *Engine {
	engine, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	return engine
}

// ConfigSummary provides a human-readable description of the interpreter limits.
func (e *Engine) ConfigSummary() string {
	return fmt.Sprintf("steps=%d recursion=%d output=%dB", e.config.StepQuota, e.config.RecursionLimit, e.config.OutputLimitBytes)
}

// Compile lexes and parses source. Lex errors stop before parsing; the
// returned error is a Diagnostics batch from whichever stage failed.
func Compile(source string) (*Program, error) {
	_, program, err := compile(source)
	return program, err
}

func compile(source string) ([]Token, *Program, error) {
	tokens, diags := Lex(source)
	if len(diags) > 0 {
		return tokens, nil, Diagnostics(diags)
	}
	program, diags := Parse(source, tokens)
	if len(diags) > 0 {
		return tokens, program, Diagnostics(diags)
	}
	return tokens, program, nil
}

// Interp runs program in a fresh environment and returns everything it
// printed. On a runtime error the output printed so far is returned with
// a *RuntimeError.
func (e *Engine) Interp(ctx context.Context, program *Program) (string, error) {
	return e.interp(ctx, program, newEnv(nil))
}

// Run compiles and interprets source, skipping later stages when an
// earlier one reports errors.
func (e *Engine) Run(ctx context.Context, source string) (*Result, error) {
	tokens, program, err := compile(source)
	result := &Result{Tokens: tokens, Program: program}
	if err != nil {
		diags := err.(Diagnostics)
		e.logger.Debug("compile failed", "stage", string(diags.Stage()), "errors", len(diags))
		return result, err
	}
	result.Output, err = e.Interp(ctx, program)
	return result, err
}

func (e *Engine) interp(ctx context.Context, program *Program, root *Env) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	exec := &Execution{
		engine:       e,
		ctx:          ctx,
		source:       program.Source,
		quota:        e.config.StepQuota,
		recursionCap: e.config.RecursionLimit,
		outputLimit:  e.config.OutputLimitBytes,
		logger:       e.logger,
	}

	e.logger.Debug("interp start", "statements", len(program.Statements))
	_, _, err := exec.evalStatements(program.Statements, root)
	e.logger.Debug("interp done", "steps", exec.steps, "output_bytes", exec.output.Len(), "error", err != nil)
	return exec.output.String(), err
}
