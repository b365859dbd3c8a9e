package cmd

import (
	"github.com/spf13/cobra"

	"github.com/0xnairb/mcp-aws-yolo/internal/cmd"
	"github.com/0xnairb/mcp-aws-yolo/internal/mcpserver"
)

// ServeCmd should be used to represent the 'serve' command.
type ServeCmd struct {
	*cmd.BaseCmd
}

// NewServeCmd creates a newly configured (Cobra) command.
func NewServeCmd(baseCmd *cmd.BaseCmd) (*cobra.Command, error) {
	c := &ServeCmd{
		BaseCmd: baseCmd,
	}

	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the router as an MCP server on stdio",
		Long: "Runs the router as an MCP server on stdio, exposing get_intention, " +
			"take_action, list_available_servers and health_check as tools. " +
			"Stdout carries the protocol; logs go to the configured log file only.",
		RunE: c.run,
	}, nil
}

func (c *ServeCmd) run(_ *cobra.Command, _ []string) error {
	logger := c.Logger()

	a, err := buildApp(logger)
	if err != nil {
		return err
	}
	defer a.router.Close()

	logger.Info("Starting MCP stdio server", "name", a.cfg.ServerName, "servers", a.registry.Len())

	return mcpserver.New(a.cfg.ServerName, cmd.Version(), a.router, logger).Serve()
}
