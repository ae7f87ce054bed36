package server

import (
	"context"
	"fmt"

	"github.com/mwantia/mugenvault/internal/agent"
	"github.com/spf13/cobra"

	config "github.com/mwantia/mugenvault/internal/config/server"
)

func NewAgentCommand() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Start the MugenVault agent",
		Long: `Start the MugenVault agent.

The agent keeps every smart collection up to date by re-evaluating its rules
against the library in a fixed interval and optionally exposes prometheus
metrics about these evaluations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}

			vault := agent.NewAgent(cfg)
			if once {
				return vault.RefreshOnce(cmd.Context())
			}

			return vault.Serve(context.Background())
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "refresh every smart collection once and exit")

	return cmd
}
