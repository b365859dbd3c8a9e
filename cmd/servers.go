package cmd

import (
	"github.com/spf13/cobra"

	"github.com/0xnairb/mcp-aws-yolo/internal/cmd"
	"github.com/0xnairb/mcp-aws-yolo/internal/config"
	"github.com/0xnairb/mcp-aws-yolo/internal/flags"
	"github.com/0xnairb/mcp-aws-yolo/internal/registry"
)

// ServersCmd should be used to represent the 'servers' command.
type ServersCmd struct {
	*cmd.BaseCmd
}

// NewServersCmd creates a newly configured (Cobra) command.
func NewServersCmd(baseCmd *cmd.BaseCmd) (*cobra.Command, error) {
	c := &ServersCmd{
		BaseCmd: baseCmd,
	}

	return &cobra.Command{
		Use:   "servers",
		Short: "Lists the registered servers",
		Long:  "Lists every server in the registry file as JSON, without contacting any external service.",
		RunE:  c.run,
	}, nil
}

// run reads the registry directly so listing works without Ollama or Qdrant.
func (c *ServersCmd) run(cobraCmd *cobra.Command, _ []string) error {
	logger := c.Logger()

	loader := &config.DefaultLoader{}
	cfg, err := loader.Load(flags.ConfigFile)
	if err != nil {
		return err
	}

	reg := registry.New(logger, cfg.RegistryFile)
	if err := reg.Load(); err != nil {
		return err
	}

	return printJSON(cobraCmd, reg.List())
}
