package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rdkcentral/dobbytest/internal/config"
	"github.com/rdkcentral/dobbytest/internal/dobby"
	"github.com/rdkcentral/dobbytest/internal/errors"
	"github.com/rdkcentral/dobbytest/internal/groups"
	"github.com/rdkcentral/dobbytest/internal/output"
	"github.com/rdkcentral/dobbytest/internal/runner"
)

// out is the shared output writer for CLI commands.
var out = output.New()

// fail prints err and returns its exit code.
func fail(err error) int {
	out.ErrorPrefix("%v", err)
	return errors.GetExitCode(err)
}

// applyOptionsToOutput configures the output writer from the global flags.
func applyOptionsToOutput(opts *GlobalOptions) {
	out.SetQuiet(opts.Quiet)
	out.SetVerbose(opts.Verbose)
	if opts.NoColor {
		out.SetColor(false)
	}
}

// loadConfig locates and loads the configuration, printing warnings.
func loadConfig(opts *GlobalOptions) (*config.Config, config.Source, error) {
	src := config.Locate(opts.ConfigPath)
	cfg, warnings, err := config.LoadSource(src)
	if err != nil {
		kind := errors.KindConfig
		var verr *config.ValidationError
		if stderrors.As(err, &verr) {
			kind = errors.KindValidation
		}
		return nil, src, errors.WrapKind(kind, err, src.Path)
	}
	for _, w := range warnings {
		out.WarningSimple("%s", w)
	}
	return cfg, src, nil
}

// cmdRun runs every test group in order.
func cmdRun(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printRunUsage()
		return 0
	}
	if len(args) > 0 {
		return fail(errors.Configf("run: unexpected argument %q", args[0]))
	}

	cfg, _, err := loadConfig(opts)
	if err != nil {
		return fail(err)
	}
	if opts.Delay > 0 {
		cfg.SettleDelay = opts.Delay
	}
	if err := checkAssetsDir(cfg.AssetsDir); err != nil {
		return fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &dobby.ExecCommander{Timeout: cfg.CommandTimeout, Sudo: cfg.Daemon.UseSudo}
	env := groups.NewEnv(cfg, out, cmd)

	r := runner.New(out, runner.Options{
		SettleDelay: cfg.SettleDelay,
		ShowTable:   !opts.Quiet,
	})
	if _, err := r.RunAll(ctx, groups.Default(env)); err != nil {
		return fail(err)
	}
	return 0
}

// checkAssetsDir reports an environment error when dir is not a readable
// directory.
func checkAssetsDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return errors.WrapKind(errors.KindEnvironment, err, "assets directory is not accessible")
	}
	if !info.IsDir() {
		return errors.Environmentf("assets directory %s is not a directory", dir)
	}
	return nil
}

// cmdGroups lists the test groups in execution order.
func cmdGroups(args []string) int {
	if wantsHelp(args) {
		printGroupsUsage()
		return 0
	}
	for i, g := range groups.List() {
		out.GroupInfo(i+1, g.Name, output.DisplayName(g.Name))
		out.GroupDetail("description", g.Description)
	}
	return 0
}

// cmdConfig handles configuration utilities.
func cmdConfig(args []string, opts *GlobalOptions) int {
	if len(args) == 0 {
		return fail(errors.Configf("config: subcommand required (validate, show)"))
	}

	switch args[0] {
	case "validate":
		return cmdConfigValidate(opts)
	case "show":
		return cmdConfigShow(opts)
	case "-h", "--help":
		printConfigUsage()
		return 0
	default:
		return fail(errors.Configf("config: unknown subcommand %q", args[0]))
	}
}

func cmdConfigValidate(opts *GlobalOptions) int {
	cfg, src, err := loadConfig(opts)
	if err != nil {
		return fail(err)
	}

	out.ValidationSuccess("Configuration is valid.")
	if _, err := os.Stat(src.Path); err == nil {
		out.SummaryItem("File", src.Path)
	} else {
		out.SummaryItem("File", "(defaults)")
	}
	out.SummaryItem("Assets", cfg.AssetsDir)
	out.SummaryItem("Groups", fmt.Sprintf("%d", len(groups.List())))
	if err := checkAssetsDir(cfg.AssetsDir); err != nil {
		out.WarningSimple("%v", err)
	}
	return 0
}

func cmdConfigShow(opts *GlobalOptions) int {
	cfg, _, err := loadConfig(opts)
	if err != nil {
		return fail(err)
	}
	if opts.Delay > 0 {
		cfg.SettleDelay = opts.Delay
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return fail(err)
	}
	out.Print("%s", data)
	return 0
}

func printRunUsage() {
	w := out

	w.HelpTitle("dobbytest run - run every test group in order")

	w.HelpSection("Usage:")
	w.HelpUsage("dobbytest [flags] run")

	w.HelpSection("Description:")
	w.Println("  Each group starts its own DobbyDaemon, runs its tests and stops it.")
	w.Println("  Groups whose binaries or assets are missing are skipped.")

	printGlobalFlags(w)
	w.Println("")
}

func printGroupsUsage() {
	w := out

	w.HelpTitle("dobbytest groups - list the test groups")

	w.HelpSection("Usage:")
	w.HelpUsage("dobbytest groups")

	w.HelpSection("Options:")
	w.HelpFlag("-h, --help", "Show this help", widthFlagWithValue)
	w.Println("")
}

func printConfigUsage() {
	w := out

	w.HelpTitle("dobbytest config - configuration utilities")

	w.HelpSection("Usage:")
	w.HelpUsage("dobbytest config <subcommand>")

	w.HelpSection("Subcommands:")
	w.HelpCommand("validate", "Validate the configuration", widthCommand)
	w.HelpCommand("show", "Print the effective configuration as YAML", widthCommand)

	w.HelpSection("Options:")
	w.HelpFlag("-h, --help", "Show this help", widthFlagWithValue)

	w.HelpSection("Examples:")
	w.HelpExample("dobbytest config validate", "Validate dobbytest.yaml")
	w.HelpExample("dobbytest --config=ci.yaml config show", "Show the configuration read from ci.yaml")
	w.Println("")
}
