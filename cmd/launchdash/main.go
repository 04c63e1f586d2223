// Package main provides the CLI entrypoint for launchdash.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/verte-zerg/launchdash/internal/binding"
	"github.com/verte-zerg/launchdash/internal/config"
	"github.com/verte-zerg/launchdash/internal/dashui"
	"github.com/verte-zerg/launchdash/internal/dataset"
	"github.com/verte-zerg/launchdash/internal/model"
)

const (
	defaultHost = "127.0.0.1"
	defaultPort = 8050
)

var (
	configPath string
	dataPath   string
	verbose    bool
	logLevel   string
	logFile    string

	dashSite string

	serveHost string
	servePort int

	selLow  float64
	selHigh float64

	viewCharts bool
	viewWidth  int

	exportDir    string
	exportWidth  int
	exportHeight int

	convertForce bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "launchdash",
		Short:         "SpaceX launch records dashboard",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDashboardCmd,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "launch dataset (CSV or SQLite)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file")
	rootCmd.Flags().StringVar(&dashSite, "site", model.AllSites, "initial launch site")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newViewCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newSitesCmd())
	rootCmd.AddCommand(newConvertCmd())

	return rootCmd
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(true)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ds, err := loadDataset(cmd.Context(), cfg.DataPath, logger)
	if err != nil {
		return err
	}
	reg, err := binding.Default(ds)
	if err != nil {
		return err
	}
	sel, err := resolveSelection(cmd, ds, cfg.Site)
	if err != nil {
		return err
	}
	m, err := dashui.NewModel(ds, reg, sel, logger)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

// resolveConfig merges the config file into flags the user did not set.
func resolveConfig(cmd *cobra.Command) (model.DashConfig, error) {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return model.DashConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "data", &dataPath, fileCfg.Data.Path)
	applyStringConfig(cmd, "site", &dashSite, fileCfg.Dashboard.Site)
	applyStringConfig(cmd, "host", &serveHost, fileCfg.Serve.Host)
	applyIntConfig(cmd, "port", &servePort, fileCfg.Serve.Port)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)

	cfg := model.DashConfig{
		DataPath: expandHome(strings.TrimSpace(dataPath)),
		Site:     strings.TrimSpace(dashSite),
		Host:     serveHost,
		Port:     servePort,
	}
	if err := validateConfig(cfg); err != nil {
		return model.DashConfig{}, err
	}
	return cfg, nil
}

func validateConfig(cfg model.DashConfig) error {
	if cfg.Site == "" {
		return fmt.Errorf("--site must not be empty")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("--port must be between 0 and 65535")
	}
	return nil
}

func loadDataset(ctx context.Context, path string, logger *zap.Logger) (*dataset.Dataset, error) {
	if path == "" {
		return nil, fmt.Errorf("no dataset: pass --data or set [data] path in %s", configPath)
	}
	ds, err := dataset.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	bounds := ds.PayloadBounds()
	logger.Info("dataset loaded",
		zap.String("path", ds.Source()),
		zap.Int("launches", ds.Len()),
		zap.Strings("sites", ds.Sites()),
		zap.Float64("min_payload_kg", bounds.Low),
		zap.Float64("max_payload_kg", bounds.High),
	)
	return ds, nil
}

// resolveSelection builds the initial selection from the dataset bounds, the
// site setting and any --low/--high flags on cmd.
func resolveSelection(cmd *cobra.Command, ds *dataset.Dataset, site string) (model.Selection, error) {
	sel := binding.DefaultSelection(ds)
	if site != "" {
		sel.Site = site
	}
	if sel.Site != model.AllSites && !ds.HasSite(sel.Site) {
		return model.Selection{}, fmt.Errorf("unknown launch site %q (available: %s)", sel.Site, strings.Join(ds.SiteOptions(), ", "))
	}
	if flagChanged(cmd, "low") {
		sel.Payload.Low = selLow
	}
	if flagChanged(cmd, "high") {
		sel.Payload.High = selHigh
	}
	return sel, nil
}

// newLogger builds a production zap logger. Interactive commands log only to
// the configured file so the terminal UI is not overwritten.
func newLogger(interactive bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if logLevel != "" {
		level, err := zapcore.ParseLevel(logLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	path := expandHome(strings.TrimSpace(logFile))
	switch {
	case path != "":
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	case interactive:
		return zap.NewNop(), nil
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# launchdash configuration
# Uncomment a value to enable it. CLI flags override config values.

[data]
# path = "spacex_launch_dash.csv"   # CSV or SQLite dataset

[dashboard]
# site = %q                       # Initial launch site

[serve]
# host = %q                 # HTTP listen host
# port = %d                        # HTTP listen port

[log]
# level = "info"                     # debug, info, warn, error
# file = %q
`,
		model.AllSites,
		defaultHost,
		defaultPort,
		config.DefaultLogPath(),
	)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
