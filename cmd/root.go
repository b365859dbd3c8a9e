package cmd

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/0xnairb/mcp-aws-yolo/internal/cmd"
	"github.com/0xnairb/mcp-aws-yolo/internal/flags"
)

var version = "dev" // Set at build time using -ldflags

// RootCmd should be used to represent the root command.
type RootCmd struct {
	*cmd.BaseCmd
}

// Execute builds the command tree and runs it.
func Execute() error {
	rootCmd, err := NewRootCmd(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error building root command: %s\n", err)
		return err
	}

	return rootCmd.Execute()
}

// NewRootCmd creates a newly configured (Cobra) command. A nil logger defers
// logger construction to flag/environment configuration at run time.
func NewRootCmd(logger hclog.Logger) (*cobra.Command, error) {
	c := &RootCmd{
		BaseCmd: &cmd.BaseCmd{},
	}
	if logger != nil {
		c.SetLogger(logger)
	}

	rootCmd := &cobra.Command{
		Use:   "mcp-aws-yolo <command> [args]",
		Short: "Routes natural language prompts to MCP tool servers.",
		Long: `mcp-aws-yolo routes natural language prompts to the most suitable MCP server
using vector similarity search over server descriptors and LLM-based
disambiguation, then executes tools on the selected server over stdio.`,
		SilenceUsage: true,
		Version:      version,
	}

	// Global flags
	flags.InitFlags(rootCmd.PersistentFlags())

	for _, builder := range []func(*cmd.BaseCmd) (*cobra.Command, error){
		NewServeCmd,
		NewDaemonCmd,
		NewIndexCmd,
		NewRouteCmd,
		NewCallCmd,
		NewServersCmd,
	} {
		sub, err := builder(c.BaseCmd)
		if err != nil {
			return nil, err
		}
		rootCmd.AddCommand(sub)
	}

	return rootCmd, nil
}
