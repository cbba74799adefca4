package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dzonerzy/go-respawn/flagsource"
	snapio "github.com/dzonerzy/go-respawn/io"
	"github.com/dzonerzy/go-respawn/respawn"
)

var version = "dev"

const localConfig = ".respawn.yaml"

// app holds one CLI invocation. term is set once a launched process ended;
// main reproduces it after the command returns.
type app struct {
	v       *viper.Viper
	io      *snapio.IOManager
	log     *snapio.Logger
	cfgFile string
	dryRun  bool
	term    *respawn.Termination
}

func newApp(iom *snapio.IOManager) *app {
	return &app{
		v:   viper.New(),
		io:  iom,
		log: snapio.NewLogger(iom).WithName("respawn").DiagnosticsToStderr(true),
	}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "respawn [flags] [--] <launcher> <program> [args...]",
		Short: "Relaunch a program with launcher flags moved in front of it",
		Long: `respawn moves recognized launcher flags (for example node's --harmony) that
were given after the program in front of it and relaunches the command,
relaying its output, exit code and terminating signal.`,
		Version:           version,
		Args:              requireCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return a.initConfig() },
		RunE:              a.run,
	}
	cmd.SetOut(a.io.Out())
	cmd.SetErr(a.io.Err())

	// Everything from the launcher on belongs to the launched command.
	cmd.Flags().SetInterspersed(false)

	cmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: ./"+localConfig+", then ~/.config/respawn/config.yaml)")
	cmd.Flags().StringSliceP("flag", "f", nil, "recognized launcher flag (repeatable)")
	cmd.Flags().String("flags-file", "", "read recognized flags from a .txt, .yaml or .toml file")
	cmd.Flags().StringSlice("probe", nil, "arguments that make the launcher list its options (e.g. --v8-options)")
	cmd.Flags().StringSlice("force", nil, "flag to inject even when no respawn is needed (repeatable)")
	cmd.Flags().String("forbid-flag", respawn.DefaultForbidFlag, "token that suppresses respawning")
	cmd.Flags().Bool("mark-child", false, "append the forbid flag to the relaunched command")
	cmd.Flags().Duration("drain-timeout", respawn.DefaultDrainTimeout, "how long to drain output after the child exits")
	cmd.Flags().BoolVar(&a.dryRun, "dry-run", false, "print the decision as JSON instead of launching")
	cmd.Flags().Bool("debug", false, "log decisions and child lifecycle")

	for key, flag := range map[string]string{
		"flags":         "flag",
		"flags_file":    "flags-file",
		"probe":         "probe",
		"force":         "force",
		"forbid_flag":   "forbid-flag",
		"mark_child":    "mark-child",
		"drain_timeout": "drain-timeout",
		"debug":         "debug",
	} {
		_ = a.v.BindPFlag(key, cmd.Flags().Lookup(flag))
	}
	return cmd
}

func requireCommand(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return respawn.NewError(respawn.ErrorTypeConfiguration, "missing the command to launch")
	}
	return nil
}

func (a *app) initConfig() error {
	a.v.SetEnvPrefix("RESPAWN")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	// Config lookup order:
	// 1. --config
	// 2. ./.respawn.yaml
	// 3. ~/.config/respawn/config.yaml
	switch {
	case a.cfgFile != "":
		a.v.SetConfigFile(a.cfgFile)
	case fileExists(localConfig):
		a.v.SetConfigFile(localConfig)
	default:
		home, _ := os.UserHomeDir()
		a.v.AddConfigPath(filepath.Join(home, ".config", "respawn"))
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return respawn.NewError(respawn.ErrorTypeConfiguration, "cannot load config").WithCause(err)
		}
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// provider assembles the recognized-flag sources in precedence order:
// explicit flags, the flags file, then the launcher's own option list.
func (a *app) provider(launcher string) flagsource.Provider {
	sources := []flagsource.Provider{flagsource.Static(a.v.GetStringSlice("flags")...)}
	if path := a.v.GetString("flags_file"); path != "" {
		sources = append(sources, flagsource.File(path))
	}
	if probe := a.v.GetStringSlice("probe"); len(probe) > 0 {
		sources = append(sources, flagsource.Cached(flagsource.Probe(launcher, probe...), 0))
	}
	return flagsource.Merge(sources...)
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.v.GetBool("debug") {
		a.log.WithLevel(snapio.LevelDebug)
	}

	flags, err := flagsource.Load(ctx, a.provider(args[0]))
	if err != nil {
		return err
	}
	forced, err := respawn.ParseForced(a.v.Get("force"))
	if err != nil {
		a.log.Warning("%v", err)
	}

	r := respawn.NewWithFlagSet(flags).
		ForbidFlag(a.v.GetString("forbid_flag")).
		MarkChild(a.v.GetBool("mark_child")).
		DrainTimeout(a.v.GetDuration("drain_timeout")).
		WithIO(a.io).
		WithLogger(a.log)

	d, err := r.Decide(args, forced)
	if err != nil {
		return err
	}
	for _, nm := range d.NearMisses {
		a.log.Warning("%s is not a recognized flag (did you mean %s?)", nm.Token, nm.Suggestion)
	}

	if a.dryRun {
		enc := json.NewEncoder(a.io.Out())
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}

	a.log.Debug("decision: needed=%t forced=%t forbidden=%t", d.Needed, d.Forced, d.Forbidden)
	p, err := r.Spawn(ctx, d.Launch)
	if err != nil {
		return err
	}
	term, err := p.Wait()
	if err != nil {
		a.log.Warning("%v", err)
	}
	a.term = &term
	return nil
}

// exitCode converts a command error to the process exit code.
func exitCode(err error) int {
	return respawn.NewExitCodeManager().Resolve(err)
}

