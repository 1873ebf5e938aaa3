package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/robfig/ssview"
	"github.com/robfig/ssview/config"
	"github.com/robfig/ssview/ssengine"
)

var logger = zap.NewNop()

// app holds the state shared by the commands.
type app struct {
	fs      afero.Fs
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	var a = &app{fs: fs, v: config.New(fs)}

	var root = &cobra.Command{
		Use:   "ssrender",
		Short: "Render views of data with SS templates",
		Long: `ssrender renders .ss and .pongo2 templates from a list of theme
directories against data read from YAML files.

Settings are read from .ssrender.yaml in the current directory, or the file
given with --config, and may be overridden with SSRENDER_ environment
variables such as SSRENDER_ENGINE=pongo2.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	var flags = root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./.ssrender.yaml)")
	flags.StringSlice("theme", nil, "theme directories, in order of precedence")
	flags.String("engine", "", "preferred engine when a template exists for both (ss, pongo2)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	bindFlags(a.v, flags, map[string]string{
		"themes":    "theme",
		"engine":    "engine",
		"log_level": "log-level",
	})

	root.AddCommand(a.renderCmd(), a.checkCmd(), a.serveCmd())
	return root
}

// bindFlags binds config keys to flags, so that flags given on the command
// line take precedence over the environment and the config file.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// setup loads the configuration and builds the logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	var zc = zap.NewProductionConfig()
	zc.Level = level
	if logger, err = zc.Build(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	ssview.Logger = logger.Named("views")
	ssengine.Logger = logger.Named("ssengine")
	return nil
}

// views compiles the configured themes.
func (a *app) views() (*ssview.Views, error) {
	var b = ssview.NewBundle().
		UseFs(a.fs).
		WatchFiles(a.cfg.Watch).
		SetBaseURL(a.cfg.BaseURL).
		SetDefaultCast(a.cfg.DefaultCast).
		PreferEngine(a.cfg.Engine)
	for _, theme := range a.cfg.Themes {
		b.AddTheme(theme)
	}
	for _, file := range a.cfg.Globals {
		b.AddGlobalsFile(file)
	}
	for _, file := range a.cfg.Scripts {
		b.AddScriptFile(file)
	}
	return b.Compile()
}

// loadData decodes a YAML data file. An empty filename yields no data.
func (a *app) loadData(filename string) (map[string]any, error) {
	if filename == "" {
		return map[string]any{}, nil
	}
	content, err := afero.ReadFile(a.fs, filename)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}
