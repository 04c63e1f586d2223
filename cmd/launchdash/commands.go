package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/launchdash/internal/binding"
	"github.com/verte-zerg/launchdash/internal/chart"
	"github.com/verte-zerg/launchdash/internal/dataset"
	"github.com/verte-zerg/launchdash/internal/model"
	"github.com/verte-zerg/launchdash/internal/stats"
	"github.com/verte-zerg/launchdash/internal/store"
	"github.com/verte-zerg/launchdash/internal/web"
)

// exportFiles maps each figure to the file export writes it to.
var exportFiles = []struct {
	output binding.Output
	name   string
}{
	{output: binding.OutputProportion, name: "proportion.png"},
	{output: binding.OutputCorrelation, name: "correlation.png"},
}

func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dashSite, "site", model.AllSites, "launch site or ALL")
	cmd.Flags().Float64Var(&selLow, "low", 0, "minimum payload mass in kg (default: dataset minimum)")
	cmd.Flags().Float64Var(&selHigh, "high", 0, "maximum payload mass in kg (default: dataset maximum)")
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveHost, "host", defaultHost, "listen host")
	cmd.Flags().IntVar(&servePort, "port", defaultPort, "listen port")
	cmd.Flags().StringVar(&dashSite, "site", model.AllSites, "default launch site")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(false)
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
	srv, err := web.New(ds, reg, sel, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	logErrf("Dashboard at http://%s/\n", addr)
	return srv.Run(ctx, addr)
}

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print both views for a selection",
		Args:  cobra.NoArgs,
		RunE:  runViewCmd,
	}
	addSelectionFlags(cmd)
	cmd.Flags().BoolVar(&viewCharts, "charts", false, "also draw the charts")
	cmd.Flags().IntVar(&viewWidth, "width", 0, "chart width in columns (default: terminal width)")
	return cmd
}

func runViewCmd(cmd *cobra.Command, _ []string) error {
	ds, reg, sel, logger, err := prepareBatch(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	w := bufio.NewWriter(cmd.OutOrStdout())
	report := stats.BuildReport(ds, sel)
	if err := writeReport(w, report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if viewCharts {
		useColor := chart.ShouldUseColor(os.Stdout) && cmd.OutOrStdout() == os.Stdout
		for _, out := range reg.Outputs() {
			spec, err := reg.Evaluate(out, sel)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			if err := chart.RenderText(w, spec, viewWidth, 0, useColor); err != nil {
				return fmt.Errorf("failed to draw %s: %w", out, err)
			}
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func writeReport(w io.Writer, report stats.Report) error {
	if err := stats.RenderSummary(w, report.Selection, report.Selected); err != nil {
		return err
	}
	if err := stats.RenderProportionTable(w, report.Proportion); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return stats.RenderCorrelationTable(w, report.Correlation)
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write both charts as PNG files",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	addSelectionFlags(cmd)
	cmd.Flags().StringVarP(&exportDir, "out", "o", ".", "output directory")
	cmd.Flags().IntVar(&exportWidth, "width", chart.DefaultPNGWidth, "image width in pixels")
	cmd.Flags().IntVar(&exportHeight, "height", chart.DefaultPNGHeight, "image height in pixels")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	if exportWidth <= 0 || exportHeight <= 0 {
		return fmt.Errorf("--width and --height must be > 0")
	}
	_, reg, sel, logger, err := prepareBatch(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	g, _ := errgroup.WithContext(cmd.Context())
	for _, f := range exportFiles {
		g.Go(func() error {
			spec, err := reg.Evaluate(f.output, sel)
			if err != nil {
				return err
			}
			path := filepath.Join(exportDir, f.name)
			if err := writeFileAtomic(path, func(w io.Writer) error {
				return chart.RenderPNG(w, spec, exportWidth, exportHeight)
			}); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			logger.Debug("chart exported", zap.String("output", string(f.output)), zap.String("path", path))
			logErrf("Wrote %s\n", path)
			return nil
		})
	}
	return g.Wait()
}

func newSitesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List launch sites and the payload range",
		Args:  cobra.NoArgs,
		RunE:  runSitesCmd,
	}
}

func runSitesCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	ds, err := loadDataset(cmd.Context(), cfg.DataPath, logger)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, site := range ds.Sites() {
		if _, err := fmt.Fprintln(out, site); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if _, err := fmt.Fprintf(out, "\nPayload range: %s\n", stats.FormatRange(ds.PayloadBounds())); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <input.csv> <output.db>",
		Short: "Copy a CSV dataset into a SQLite file",
		Args:  cobra.ExactArgs(2),
		RunE:  runConvertCmd,
	}
	cmd.Flags().BoolVar(&convertForce, "force", false, "overwrite an existing output file")
	return cmd
}

func runConvertCmd(cmd *cobra.Command, args []string) error {
	if _, err := resolveConfig(cmd); err != nil {
		return err
	}
	logger, err := newLogger(false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	return convertDataset(cmd.Context(), args[0], args[1], convertForce, logger)
}

func convertDataset(ctx context.Context, src, dst string, force bool, logger *zap.Logger) error {
	if !force {
		if _, err := os.Stat(dst); err == nil {
			return fmt.Errorf("output already exists: %s (use --force to overwrite)", dst)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat output: %w", err)
		}
	}
	ds, err := dataset.LoadCSV(src)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	st, err := store.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	if err := st.ReplaceLaunches(ctx, ds.Records()); err != nil {
		return fmt.Errorf("failed to write launches: %w", err)
	}
	logger.Info("dataset converted", zap.String("from", src), zap.String("to", dst), zap.Int("launches", ds.Len()))
	return nil
}

// prepareBatch resolves config, logger, dataset, registry and selection for
// the non-interactive commands.
func prepareBatch(cmd *cobra.Command) (*dataset.Dataset, *binding.Registry, model.Selection, *zap.Logger, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, model.Selection{}, nil, err
	}
	logger, err := newLogger(false)
	if err != nil {
		return nil, nil, model.Selection{}, nil, err
	}
	ds, err := loadDataset(cmd.Context(), cfg.DataPath, logger)
	if err != nil {
		return nil, nil, model.Selection{}, nil, err
	}
	reg, err := binding.Default(ds)
	if err != nil {
		return nil, nil, model.Selection{}, nil, err
	}
	sel, err := resolveSelection(cmd, ds, cfg.Site)
	if err != nil {
		return nil, nil, model.Selection{}, nil, err
	}
	return ds, reg, sel, logger, nil
}

// writeFileAtomic writes through a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := write(writer); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename: %w", err)
	}
	return nil
}
