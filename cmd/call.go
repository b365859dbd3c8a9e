package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xnairb/mcp-aws-yolo/internal/cmd"
)

// CallCmd should be used to represent the 'call' command.
type CallCmd struct {
	*cmd.BaseCmd
	Params string
}

// NewCallCmd creates a newly configured (Cobra) command.
func NewCallCmd(baseCmd *cmd.BaseCmd) (*cobra.Command, error) {
	c := &CallCmd{
		BaseCmd: baseCmd,
	}

	cobraCommand := &cobra.Command{
		Use:   "call <server-id> <tool> [--params]",
		Short: "Calls a tool on a registered server",
		Long: "Calls a named tool on a registered server and prints the execution " +
			"result as JSON. Arguments are passed as a JSON object via --params.",
		Args: cobra.ExactArgs(2),
		RunE: c.run,
	}

	cobraCommand.Flags().StringVar(
		&c.Params,
		"params",
		"",
		"Tool arguments as a JSON object, e.g. '{\"bucket_name\": \"reports\"}'",
	)

	return cobraCommand, nil
}

func (c *CallCmd) run(cobraCmd *cobra.Command, args []string) error {
	logger := c.Logger()

	var params map[string]any
	if c.Params != "" {
		if err := json.Unmarshal([]byte(c.Params), &params); err != nil {
			return fmt.Errorf("invalid --params, expected a JSON object: %w", err)
		}
	}

	a, err := buildApp(logger)
	if err != nil {
		return err
	}
	defer a.router.Close()

	result := a.router.Invoke(context.Background(), args[0], args[1], params)

	return printJSON(cobraCmd, result)
}
