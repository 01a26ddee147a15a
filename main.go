// bufferly: clipboard history in the menu bar.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bufferly/internal/app"
	"bufferly/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "bufferly",
		Short: "Clipboard history with a hotkey overlay",
		Long: `bufferly keeps a history of everything copied, text and images, and
pastes any earlier entry back into the frontmost application from a floating
overlay opened with a global hotkey (default ctrl+shift+v).

Running "bufferly" with no subcommand starts the tray application. The other
subcommands read or modify the same history without starting the UI.

Settings live in config.json inside the data directory and can be overridden
with BUFFERLY_<KEY> env vars.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:              func(_ *cobra.Command, _ []string) error { return runApp(v) },
	}

	addGlobalFlags(root)

	root.AddCommand(
		newHistoryCmd(v),
		newClearCmd(v),
		newUpdateCmd(v),
		newVersionCmd(),
	)

	return root
}

func runApp(v *viper.Viper) error {
	env, err := loadEnv(v)
	if err != nil {
		return err
	}

	out, closeLog, err := logging.Output(env.dataDir)
	if err != nil {
		slog.Warn("logging to stderr", "error", err)
	}
	defer closeLog()
	logging.Setup(out, logging.ParseFormat(env.cfg.LogFormat), logging.ParseLevel(env.cfg.LogLevel))

	bufferly, err := app.New(env.cfg, env.cfgPath, env.dataDir)
	if err != nil {
		return err
	}
	bufferly.Run()
	return nil
}
