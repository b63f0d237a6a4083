package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/logger"
)

const version = "v0.1.0"

type rootOptions struct {
	configPath string
}

func (o *rootOptions) load() (config.Config, error) {
	return config.Load(o.configPath)
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront cart, catalog and checkout server",
		SilenceUsage:  true,
		SilenceErrors: false,
		Version:       version,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("STOREFRONT_CONFIG"), "path to a YAML config file")

	root.AddCommand(
		newServeCmd(opts),
		newCartCmd(opts),
		newTotalsCmd(),
	)
	return root
}

// cliLogger keeps stdout free for command output.
func cliLogger(cfg config.Config) *slog.Logger {
	return logger.New(logger.Options{
		Service: "storefront-cli",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Output:  os.Stderr,
	})
}
