package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vea-lang/vea/vea"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return usageError()
	}
	switch args[1] {
	case "run":
		return runCommand(args[2:])
	case "check":
		return checkCommand(args[2:])
	case "tokens":
		return tokensCommand(args[2:])
	case "ast":
		return astCommand(args[2:])
	case "fmt":
		return fmtCommand(args[2:])
	case "repl":
		return replCommand(args[2:])
	case "lsp":
		return runLSP()
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError()
	}
}

// engineFlags are the limits shared by run and repl. Values given on the
// command line override vea.yml.
type engineFlags struct {
	configPath  string
	steps       int
	recursion   int
	outputLimit int
	timeout     time.Duration
	logLevel    string
}

func (f *engineFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "path to a vea.yml config file")
	fs.IntVar(&f.steps, "steps", 0, "maximum evaluation steps (0 = unbounded)")
	fs.IntVar(&f.recursion, "recursion", 0, "maximum call depth (0 = unbounded)")
	fs.IntVar(&f.outputLimit, "output-limit", 0, "maximum printed bytes (0 = unbounded)")
	fs.DurationVar(&f.timeout, "timeout", 0, "wall-clock limit for one run")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error, none")
}

func (f *engineFlags) resolve(fs *flag.FlagSet) (cliConfig, error) {
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return cfg, err
	}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "steps":
			cfg.StepQuota = f.steps
		case "recursion":
			cfg.RecursionLimit = f.recursion
		case "output-limit":
			cfg.OutputLimitBytes = f.outputLimit
		case "timeout":
			cfg.Timeout = f.timeout
		case "log-level":
			cfg.LogLevel = f.logLevel
		}
	})
	return cfg, cfg.validate()
}

func (c cliConfig) runContext() (context.Context, context.CancelFunc) {
	if c.Timeout > 0 {
		return context.WithTimeout(context.Background(), c.Timeout)
	}
	return context.WithCancel(context.Background())
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	var ef engineFlags
	ef.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, source, err := readScript("run", fs.Args())
	if err != nil {
		return err
	}
	cfg, err := ef.resolve(fs)
	if err != nil {
		return err
	}

	logger := cfg.newLogger(os.Stderr)
	engine, err := vea.NewEngine(cfg.engineConfig(logger))
	if err != nil {
		return err
	}
	logger.Debug("engine ready", "script", path, "limits", engine.ConfigSummary())

	ctx, cancel := cfg.runContext()
	defer cancel()
	result, err := engine.Run(ctx, source)
	if result != nil && result.Output != "" {
		fmt.Println(result.Output)
	}
	if err != nil {
		return &fileError{Path: path, Err: err}
	}
	return nil
}

func tokensCommand(args []string) error {
	fs := flag.NewFlagSet("tokens", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, source, err := readScript("tokens", fs.Args())
	if err != nil {
		return err
	}

	tokens, diags := vea.Lex(source)
	for _, tok := range tokens {
		pos := vea.LineColumn(source, tok.Span.Start)
		fmt.Printf("%d:%d\t%s\n", pos.Line, pos.Column, tok)
	}
	if len(diags) > 0 {
		return &fileError{Path: path, Err: vea.Diagnostics(diags)}
	}
	return nil
}

func astCommand(args []string) error {
	fs := flag.NewFlagSet("ast", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, source, err := readScript("ast", fs.Args())
	if err != nil {
		return err
	}

	program, err := vea.Compile(source)
	if err != nil {
		return &fileError{Path: path, Err: err}
	}
	fmt.Println(program.String())
	return nil
}

func replCommand(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	plain := fs.Bool("plain", false, "use a line-oriented prompt instead of the full-screen UI")
	var ef engineFlags
	ef.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := ef.resolve(fs)
	if err != nil {
		return err
	}
	if *plain {
		return runPlainREPL(cfg)
	}
	return runREPL(cfg)
}

// readScript loads the file named by the first positional argument.
func readScript(command string, args []string) (string, string, error) {
	if len(args) == 0 {
		return "", "", fmt.Errorf("vea %s: script path required", command)
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return "", "", fmt.Errorf("resolve script path: %w", err)
	}
	input, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read script: %w", err)
	}
	return path, string(input), nil
}

// fileError ties a compile or runtime failure to the script it came from.
type fileError struct {
	Path string
	Err  error
}

func (e *fileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *fileError) Unwrap() error { return e.Err }

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags] [args]\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run [flags] <file>      run a program and print its output")
	fmt.Fprintln(os.Stderr, "  check <file>            report syntax errors and unreachable code")
	fmt.Fprintln(os.Stderr, "  tokens <file>           print the token stream")
	fmt.Fprintln(os.Stderr, "  ast <file>              print the parsed program as canonical source")
	fmt.Fprintln(os.Stderr, "  fmt [-w] [-l] [-check] <paths>")
	fmt.Fprintln(os.Stderr, "                          format .vea files")
	fmt.Fprintln(os.Stderr, "  repl [-plain] [flags]   start an interactive session")
	fmt.Fprintln(os.Stderr, "  lsp                     serve diagnostics over stdio")
	fmt.Fprintln(os.Stderr, "Run and repl flags:")
	fmt.Fprintln(os.Stderr, "  -config <file>    read limits from a YAML file (default ./vea.yml)")
	fmt.Fprintln(os.Stderr, "  -steps <n>        maximum evaluation steps")
	fmt.Fprintln(os.Stderr, "  -recursion <n>    maximum call depth")
	fmt.Fprintln(os.Stderr, "  -output-limit <n> maximum printed bytes")
	fmt.Fprintln(os.Stderr, "  -timeout <d>      wall-clock limit, e.g. 2s")
	fmt.Fprintln(os.Stderr, "  -log-level <l>    debug, info, warn, error or none")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}
