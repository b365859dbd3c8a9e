package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xnairb/mcp-aws-yolo/internal/cmd"
)

// RouteCmd should be used to represent the 'route' command.
type RouteCmd struct {
	*cmd.BaseCmd
}

// NewRouteCmd creates a newly configured (Cobra) command.
func NewRouteCmd(baseCmd *cmd.BaseCmd) (*cobra.Command, error) {
	c := &RouteCmd{
		BaseCmd: baseCmd,
	}

	return &cobra.Command{
		Use:   "route <prompt>",
		Short: "Routes a prompt to the best matching server",
		Long: "Routes a natural language prompt to the best matching registered server " +
			"and prints the routing result as JSON.",
		Args: cobra.MinimumNArgs(1),
		RunE: c.run,
	}, nil
}

func (c *RouteCmd) run(cobraCmd *cobra.Command, args []string) error {
	logger := c.Logger()

	a, err := buildApp(logger)
	if err != nil {
		return err
	}
	defer a.router.Close()

	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return fmt.Errorf("prompt must not be empty")
	}

	result := a.router.FindBestServer(context.Background(), prompt)

	return printJSON(cobraCmd, result)
}

func printJSON(cobraCmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	fmt.Fprintln(cobraCmd.OutOrStdout(), string(data))

	return nil
}
