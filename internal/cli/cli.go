package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/numerics88/inpdeck/pkg/inp"
)

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
	ExitAborted = 3
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Options is the result of parsing the command line.
type Options struct {
	// Paths are the deck files and directories named on the command line.
	Paths []string

	// WritePath, when set, receives the first model rewritten as a deck.
	WritePath string

	// ConfigPath is the configuration file that was read, if any.
	ConfigPath string

	Config inp.Config
}

// Parse processes command-line arguments. It returns the parsed options, a
// boolean indicating if the program should exit cleanly, or an ExitError.
//
// Settings come from the defaults, then the configuration file (the -config
// flag, or an inpdeck.yaml, inpdeck.yml or inpdeck.hcl found in configDir),
// then the flags given explicitly.
func Parse(args []string, output io.Writer, configDir string) (*Options, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("inpinfo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
inpinfo - Summarize Abaqus input decks.

Usage:
  inpinfo [options] DECK_PATH...

Arguments:
  DECK_PATH
    Path to an .inp file or a directory searched for .inp files.

Options:
`)
		flagSet.PrintDefaults()
	}

	defaults := inp.DefaultConfig()
	configFlag := flagSet.String("config", "", "Path to a YAML or HCL configuration file.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	debugFlag := flagSet.Bool("debug", defaults.Debug, "Log parser debug messages.")
	formatFlag := flagSet.String("format", defaults.Format, "Report format. Options: 'text', 'markdown' or 'html'.")
	writeFlag := flagSet.String("write", "", "Write the parsed model back out as a deck to this path. Needs exactly one deck.")
	storeFlag := flagSet.String("store", defaults.Store, "Path to a model store database. Empty disables the store.")
	workersFlag := flagSet.Int("workers", defaults.Workers, "Number of concurrent deck loaders.")
	noValidateFlag := flagSet.Bool("no-validate", !defaults.Validate, "Skip model validation after reading.")
	skipErrorsFlag := flagSet.Bool("skip-errors", defaults.SkipErrors, "Report decks that fail to read and continue with the rest.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		slog.Debug("No deck paths provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	opts := &Options{
		Paths:     flagSet.Args(),
		WritePath: *writeFlag,
		Config:    defaults,
	}

	opts.ConfigPath = *configFlag
	if opts.ConfigPath == "" && configDir != "" {
		path, err := inp.FindConfig(configDir)
		if err != nil && !errors.Is(err, inp.ErrNoConfig) {
			return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
		}
		opts.ConfigPath = path
	}
	if opts.ConfigPath != "" {
		cfg, err := inp.LoadConfig(opts.ConfigPath)
		if err != nil {
			return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
		}
		opts.Config = cfg
		slog.Debug("Configuration file loaded.", "path", opts.ConfigPath)
	}

	// Flags given on the command line override the file.
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			opts.Config.LogLevel = strings.ToLower(*logLevelFlag)
		case "log-format":
			opts.Config.LogFormat = strings.ToLower(*logFormatFlag)
		case "debug":
			opts.Config.Debug = *debugFlag
		case "format":
			opts.Config.Format = strings.ToLower(*formatFlag)
		case "store":
			opts.Config.Store = *storeFlag
		case "workers":
			opts.Config.Workers = *workersFlag
		case "no-validate":
			opts.Config.Validate = !*noValidateFlag
		case "skip-errors":
			opts.Config.SkipErrors = *skipErrorsFlag
		}
	})

	if err := opts.Config.Validate(); err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid options: " + err.Error()}
	}
	if opts.WritePath != "" && len(opts.Paths) != 1 {
		return nil, false, &ExitError{Code: ExitUsage, Message: "-write needs exactly one deck path"}
	}

	slog.Debug("CLI parser finished successfully.", "paths", opts.Paths)
	return opts, false, nil
}
