// Package cli defines the cobra commands of the nudge binary.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/nudge/internal/config"
	"github.com/example/nudge/internal/wire"
)

// configFlag reads the --config flag, falling back to the default path.
func configFlag(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return path
}

// addConfigFlag registers the shared --config flag.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "config file path (default ~/.nudge/config.yaml)")
}

// buildContainer loads configuration and wires the application.
func buildContainer(cmd *cobra.Command, logger *zap.Logger) (*wire.Container, error) {
	cfg, err := config.Load(configFlag(cmd))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return wire.New(cfg, logger)
}
