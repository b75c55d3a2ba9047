package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ashivadi/open-interpreter/internal/catalog"
	"github.com/ashivadi/open-interpreter/internal/config"
	"github.com/ashivadi/open-interpreter/internal/logging"
	"github.com/ashivadi/open-interpreter/internal/output"
	"github.com/ashivadi/open-interpreter/internal/preflight"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	flagLocal       = "local"
	flagModel       = "model"
	flagAPIKey      = "api-key"
	flagGGUFQuality = "gguf-quality"
	flagAutoRun     = "auto-run"
	flagConfig      = "config"
	flagNoPacing    = "no-pacing"
	flagPip         = "pip"
	flagVerbose     = "verbose"
	flagSave        = "save"
	flagOutput      = "output"
)

// cliApp carries the process wiring shared by every command. The welcome
// gate lives here so the banner is shown at most once per process.
type cliApp struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	env    config.EnvLookup

	catalog        *catalog.Catalog
	display        preflight.Display
	welcome        *preflight.WelcomeGate
	pause          preflight.PauseFunc
	packageManager func(command string) preflight.PackageManager
}

func newCLIApp(in io.Reader, out, errOut io.Writer, env config.EnvLookup) *cliApp {
	if env == nil {
		env = config.DefaultEnvLookup
	}
	app := &cliApp{
		in:      in,
		out:     out,
		errOut:  errOut,
		env:     env,
		catalog: catalog.Default(),
		display: output.NewMarkdownDisplay(out),
		pause:   preflight.SleepPause,
		packageManager: func(command string) preflight.PackageManager {
			return preflight.NewPipManager(command)
		},
	}
	// The gate outlives a single run, so it reads the pacing chosen by the
	// current one.
	app.welcome = preflight.NewWelcomeGate(app.display, func(ctx context.Context, d time.Duration) {
		app.pause(ctx, d)
	})
	return app
}

func newRootCommand(app *cliApp) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "interpreter",
		Short: "Negotiate model settings before an Open Interpreter session",
		Long: `Resolve the execution mode, model and provider requirements for a session.

Missing OpenAI credentials are requested interactively (press enter to fall
back to a local model); Bedrock models get their Python SDK installed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.negotiate(cmd, "text")
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolP(flagLocal, "l", false, "Run a local model")
	flags.StringP(flagModel, "m", "", "Model identifier")
	flags.String(flagAPIKey, "", "API key for the selected provider")
	flags.Float64(flagGGUFQuality, 0, "Local model quantization preference between 0 and 1")
	flags.BoolP(flagAutoRun, "y", false, "Skip confirmation messages")
	flags.String(flagConfig, "", "Path to the configuration file")
	flags.Bool(flagNoPacing, false, "Do not pause after status messages")
	flags.String(flagPip, "", "Command used to query and install Python packages")
	flags.BoolP(flagVerbose, "v", false, "Verbose logging")
	flags.Bool(flagSave, false, "Persist the negotiated mode and model to the configuration file")

	rootCmd.AddCommand(newCheckCommand(app))
	rootCmd.AddCommand(newModelsCommand(app))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

func newCheckCommand(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Negotiate settings and print them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString(flagOutput)
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "text" && format != "yaml" {
				return &ExitCodeError{Code: exitUsage, Err: fmt.Errorf("unsupported output format %q (want text or yaml)", format)}
			}
			return app.negotiate(cmd, format)
		},
	}
	cmd.Flags().StringP(flagOutput, "o", "text", "Output format: text or yaml")
	return cmd
}

func newModelsCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models with provider checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, "OpenAI chat models:"); err != nil {
				return err
			}
			for _, model := range app.catalog.OpenAIChatModels() {
				_, _ = fmt.Fprintf(out, "  %s\n", model)
			}
			_, _ = fmt.Fprintln(out, "Bedrock models:")
			for _, model := range app.catalog.BedrockModels() {
				_, _ = fmt.Fprintf(out, "  %s\n", model)
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", appVersion())
			return err
		},
	}
}

func (a *cliApp) negotiate(cmd *cobra.Command, format string) error {
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	opts := []config.Option{
		config.WithEnv(a.env),
		config.WithOverrides(overridesFromFlags(v)),
	}
	if path := strings.TrimSpace(v.GetString(flagConfig)); path != "" {
		opts = append(opts, config.WithConfigPath(path))
	}
	runtimeCfg, meta, err := config.Load(opts...)
	if err != nil {
		return &ExitCodeError{Code: exitUsage, Err: err}
	}

	logging.SetOutput(a.errOut)
	if runtimeCfg.Verbose {
		logging.SetLevel("debug")
	}
	logger := logging.NewComponentLogger("preflight")
	logger.Debug("config loaded from %q at %s", meta.ConfigPath(), meta.LoadedAt().Format("15:04:05"))

	a.pause = preflight.NoPause
	if runtimeCfg.Pacing {
		a.pause = preflight.SleepPause
	}

	negotiator := preflight.NewNegotiator(preflight.Config{
		Catalog:      a.catalog,
		Credentials:  preflight.NewCredentialResolver(a.env),
		Dependencies: preflight.NewDependencyResolver(a.packageManager(runtimeCfg.PipCommand), logger),
		Welcome:      a.welcome,
		Prompter:     preflight.NewTerminalPrompter(a.in, a.out),
		Display:      a.display,
		Pause:        a.pause,
		Logger:       logger,
	})
	if err := negotiator.Negotiate(cmd.Context(), &runtimeCfg.Execution); err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool(flagSave); save {
		saveOpts := []config.Option{config.WithEnv(a.env)}
		if path := meta.ConfigPath(); path != "" {
			saveOpts = append(saveOpts, config.WithConfigPath(path))
		} else if path := strings.TrimSpace(v.GetString(flagConfig)); path != "" {
			saveOpts = append(saveOpts, config.WithConfigPath(path))
		}
		path, err := config.SaveExecutionPreferences(runtimeCfg.Execution, saveOpts...)
		if err != nil {
			return err
		}
		logger.Info("saved settings to %s", path)
	}

	out := cmd.OutOrStdout()
	if format == "yaml" {
		data, err := output.SummaryYAML(runtimeCfg, meta)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}
	_, err = fmt.Fprintln(out, output.FitSummary(output.RenderSummary(runtimeCfg, meta), out))
	return err
}

// overridesFromFlags keeps only the flags the operator actually passed so
// file and environment values are not clobbered by flag defaults.
func overridesFromFlags(v *viper.Viper) config.Overrides {
	var overrides config.Overrides
	if v.IsSet(flagLocal) {
		local := v.GetBool(flagLocal)
		overrides.Local = &local
	}
	if v.IsSet(flagModel) {
		model := v.GetString(flagModel)
		overrides.Model = &model
	}
	if v.IsSet(flagAPIKey) {
		key := v.GetString(flagAPIKey)
		overrides.APIKey = &key
	}
	if v.IsSet(flagGGUFQuality) {
		quality := v.GetFloat64(flagGGUFQuality)
		overrides.GGUFQuality = &quality
	}
	if v.IsSet(flagAutoRun) {
		autoRun := v.GetBool(flagAutoRun)
		overrides.AutoRun = &autoRun
	}
	if v.IsSet(flagNoPacing) {
		pacing := !v.GetBool(flagNoPacing)
		overrides.Pacing = &pacing
	}
	if v.IsSet(flagPip) {
		pip := v.GetString(flagPip)
		overrides.PipCommand = &pip
	}
	if v.IsSet(flagVerbose) {
		verbose := v.GetBool(flagVerbose)
		overrides.Verbose = &verbose
	}
	return overrides
}
