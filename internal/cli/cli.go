// Package cli provides command-line interface functionality for dobbytest.
package cli

import (
	"strings"
	"time"

	"github.com/rdkcentral/dobbytest/internal/errors"
	"github.com/rdkcentral/dobbytest/internal/output"
)

// Version is set at build time.
var Version = "dev"

// Help text alignment widths.
const (
	widthCommand       = 16
	widthFlagWithValue = 18
	widthEnvVar        = 18
)

// wantsHelp returns true if args contain -h or --help before any -- separator.
func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
		if arg == "--" {
			return false
		}
	}
	return false
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	if len(args) > 0 {
		switch args[0] {
		case "-h", "--help", "help":
			printUsage()
			return 0
		case "--version", "version":
			out.Println("dobbytest %s", Version)
			return 0
		}
	}

	opts, remaining, err := parseGlobalFlags(args)
	if err != nil {
		return fail(err)
	}

	// No command means run.
	if len(remaining) == 0 {
		return cmdRun(nil, opts)
	}
	cmd := remaining[0]
	cmdArgs := remaining[1:]

	switch cmd {
	case "run":
		return cmdRun(cmdArgs, opts)
	case "groups":
		return cmdGroups(cmdArgs)
	case "config":
		return cmdConfig(cmdArgs, opts)
	case "help", "-h", "--help":
		printUsage()
		return 0
	case "version":
		out.Println("dobbytest %s", Version)
		return 0
	default:
		code := fail(errors.Configf("unknown command %q", cmd))
		out.Errorln("  run 'dobbytest help' for usage")
		return code
	}
}

// GlobalOptions holds global command-line options.
type GlobalOptions struct {
	ConfigPath string
	Delay      time.Duration
	NoColor    bool
	Quiet      bool
	Verbose    bool
}

// parseGlobalFlags manually parses global flags from arguments.
//
// Flags may appear before or after the command. Everything after -- is
// passed on unparsed, without the separator.
func parseGlobalFlags(args []string) (*GlobalOptions, []string, error) {
	opts := &GlobalOptions{}
	var remaining []string

	i := 0
	for i < len(args) {
		arg := args[i]

		switch {
		case arg == "-q" || arg == "--quiet":
			opts.Quiet = true
			i++
		case arg == "-v" || arg == "--verbose":
			opts.Verbose = true
			i++
		case arg == "--no-color":
			opts.NoColor = true
			i++
		case arg == "--config":
			if i+1 >= len(args) {
				return nil, nil, errors.Configf("--config requires a value")
			}
			opts.ConfigPath = args[i+1]
			i += 2
		case strings.HasPrefix(arg, "--config="):
			opts.ConfigPath = strings.TrimPrefix(arg, "--config=")
			if opts.ConfigPath == "" {
				return nil, nil, errors.Configf("--config requires a value")
			}
			i++
		case arg == "--delay":
			if i+1 >= len(args) {
				return nil, nil, errors.Configf("--delay requires a value")
			}
			d, err := parseDelay(args[i+1])
			if err != nil {
				return nil, nil, err
			}
			opts.Delay = d
			i += 2
		case strings.HasPrefix(arg, "--delay="):
			d, err := parseDelay(strings.TrimPrefix(arg, "--delay="))
			if err != nil {
				return nil, nil, err
			}
			opts.Delay = d
			i++
		case arg == "--":
			remaining = append(remaining, args[i+1:]...)
			i = len(args)
		default:
			remaining = append(remaining, arg)
			i++
		}
	}

	if err := validateGlobalOptions(opts); err != nil {
		return nil, nil, err
	}

	applyOptionsToOutput(opts)

	return opts, remaining, nil
}

func parseDelay(value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Configf("invalid --delay value %q\n  example: dobbytest --delay 500ms", value)
	}
	if d <= 0 {
		return 0, errors.Configf("--delay must be positive, got %s", value)
	}
	return d, nil
}

// validateGlobalOptions checks that global options are valid.
func validateGlobalOptions(opts *GlobalOptions) error {
	if opts.Quiet && opts.Verbose {
		return errors.Configf("--quiet and --verbose are mutually exclusive")
	}
	return nil
}

func printUsage() {
	w := out

	w.HelpTitle("dobbytest - sequential test driver for the Dobby container manager")

	w.HelpSection("Usage:")
	w.HelpUsage("dobbytest [flags] [command]")

	w.HelpSection("Commands:")
	w.HelpCommand("run", "Run every test group in order (default)", widthCommand)
	w.HelpCommand("groups", "List the test groups in execution order", widthCommand)
	w.HelpCommand("config validate", "Validate the configuration", widthCommand)
	w.HelpCommand("config show", "Print the effective configuration", widthCommand)
	w.HelpCommand("version", "Show version information", widthCommand)

	printGlobalFlags(w)

	w.HelpSection("Examples:")
	w.HelpExample("dobbytest", "Run all test groups")
	w.HelpExample("dobbytest -v --delay 2s", "Run with debug output and a longer pause between groups")
	w.HelpExample("dobbytest --config /etc/dobbytest.yaml config show", "Show the configuration read from a file")
	w.Println("")
}

func printGlobalFlags(w *output.Writer) {
	w.HelpSection("Global Flags:")
	w.HelpFlag("-q, --quiet", "Warnings and errors only", widthFlagWithValue)
	w.HelpFlag("-v, --verbose", "Show debug messages", widthFlagWithValue)
	w.HelpFlag("--config <path>", "Configuration file (default: dobbytest.yaml)", widthFlagWithValue)
	w.HelpFlag("--delay <duration>", "Pause between test groups (default: 1s)", widthFlagWithValue)
	w.HelpFlag("--no-color", "Disable colored output", widthFlagWithValue)
	w.HelpFlag("-h, --help", "Show this help", widthFlagWithValue)
	w.HelpFlag("--version", "Show version", widthFlagWithValue)

	w.HelpSection("Environment:")
	w.HelpEnvVar("DOBBYTEST_CONFIG", "Configuration file when --config is not given", widthEnvVar)
	w.HelpEnvVar("DOBBYTEST_ASSETS", "Overrides assets_dir", widthEnvVar)
	w.HelpEnvVar("NO_COLOR", "Disable colored output", widthEnvVar)
}
