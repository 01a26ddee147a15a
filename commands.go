package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bufferly/internal/app"
	"bufferly/internal/config"
	"bufferly/internal/database"
	"bufferly/internal/logging"
	"bufferly/internal/ui/components"
	"bufferly/internal/update"
)

// addGlobalFlags adds the flags shared by every subcommand.
func addGlobalFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("data-dir", "", "directory holding history and config (default: user config dir)/Bufferly")
	f.String("config", "", "path to config file (default: <data-dir>/config.json)")
	f.String("log-format", "", "log format: auto|text|json")
	f.String("log-level", "", "log level: debug|info|warn|error")
}

// bindViper maps the persistent flags onto config keys.
//
// Precedence (lowest → highest): defaults → config file → BUFFERLY_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	f := cmd.Flags()
	for key, flag := range map[string]string{
		"data_dir":    "data-dir",
		"config_file": "config",
		"log_format":  "log-format",
		"log_level":   "log-level",
	} {
		if err := v.BindPFlag(key, f.Lookup(flag)); err != nil {
			return fmt.Errorf("binding flags: %w", err)
		}
	}
	return nil
}

type env struct {
	cfg     *config.Config
	cfgPath string
	dataDir string
}

// loadEnv resolves the data directory, loads the config and installs the
// logger.
func loadEnv(v *viper.Viper) (*env, error) {
	dataDir := v.GetString("data_dir")
	if dataDir == "" {
		dir, err := config.DataDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve data directory: %w", err)
		}
		dataDir = dir
	} else if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfgPath := v.GetString("config_file")
	if cfgPath == "" {
		cfgPath = app.ConfigPath(dataDir)
	}

	cv := config.NewViper()
	for _, key := range []string{"log_format", "log_level"} {
		if s := v.GetString(key); s != "" {
			cv.Set(key, s)
		}
	}
	cfg, err := config.LoadWith(cv, cfgPath)
	if err != nil {
		return nil, err
	}

	logging.Setup(nil, logging.ParseFormat(cfg.LogFormat), logging.ParseLevel(cfg.LogLevel))
	slog.Debug("config loaded", "path", cfgPath, "data_dir", dataDir)

	return &env{cfg: cfg, cfgPath: cfgPath, dataDir: dataDir}, nil
}

func newHistoryCmd(v *viper.Viper) *cobra.Command {
	var (
		limit   int
		query   string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored clipboard items, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(v)
			if err != nil {
				return err
			}
			storage, err := app.OpenStorage(e.dataDir)
			if err != nil {
				return err
			}
			defer storage.Close()

			ctx := cmd.Context()
			var items []*database.ClipboardItem
			if strings.TrimSpace(query) != "" {
				items, err = storage.Repository.SearchItems(ctx, query, limit)
			} else {
				items, err = storage.Repository.RecentItems(ctx, limit)
			}
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			printHistory(cmd, items)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&limit, "limit", "n", 0, "maximum number of items (0 = all)")
	f.StringVarP(&query, "query", "q", "", "only items whose text or note contains this")
	f.BoolVar(&jsonOut, "json", false, "output raw JSON")

	return cmd
}

func printHistory(cmd *cobra.Command, items []*database.ClipboardItem) {
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No clipboard history.")
		return
	}

	now := time.Now()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAGE\tPIN\tCONTENT\tNOTE")
	for _, item := range items {
		pin := ""
		if item.Pinned {
			pin = "*"
		}
		content := components.ItemTitle(item)
		if item.Type.IsImage() {
			content = fmt.Sprintf("%s (%s)", content, components.FormatBytes(item.BinarySize))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			item.ID[:8],
			components.FormatTimeAgo(item.CreatedAt, now),
			pin,
			content,
			item.NoteText(),
		)
	}
	w.Flush()
}

func newClearCmd(v *viper.Viper) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the whole clipboard history, pinned items included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to clear history without --yes")
			}
			e, err := loadEnv(v)
			if err != nil {
				return err
			}
			storage, err := app.OpenStorage(e.dataDir)
			if err != nil {
				return err
			}
			defer storage.Close()

			if err := storage.Repository.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}

func newUpdateCmd(v *viper.Viper) *cobra.Command {
	var install bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Check GitHub for a newer release",
		Long: `Checks the configured release repository for a newer stable version.

With --install the release archive is downloaded, verified against
checksums.txt when the release publishes one, and swapped in for the running
application bundle (macOS only).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(v)
			if err != nil {
				return err
			}
			return runUpdate(cmd, e, install)
		},
	}

	cmd.Flags().BoolVar(&install, "install", false, "download and install the update if one is available")
	return cmd
}

func runUpdate(cmd *cobra.Command, e *env, install bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	source, err := update.NewGitHubSource(e.cfg.UpdateRepository)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var last update.State
	opts := update.Options{
		CurrentVersion: app.Version,
		Source:         source,
		Preferences:    config.NewStore(e.cfg, e.cfgPath),
		OnStatus: func(s update.Status) {
			defer func() { last = s.State }()
			if s.State == update.StateDownloading {
				fmt.Fprintf(out, "\r%s", s.Text())
				return
			}
			if last == update.StateDownloading {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, s.Text())
		},
	}
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		opts.BundlePath, _ = update.BundlePath(exe)
	}
	checker := update.NewChecker(opts)

	if err := checker.CheckForUpdate(ctx); err != nil {
		return err
	}
	if !install || checker.Status().State != update.StateUpdateAvailable {
		return nil
	}
	if err := checker.DownloadUpdate(ctx); err != nil {
		return err
	}
	return checker.InstallUpdate(ctx)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit %s, built %s)\n", app.AppName, app.Version, app.GitCommit, app.BuildDate)
		},
	}
}
