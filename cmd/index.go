package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xnairb/mcp-aws-yolo/internal/cmd"
	"github.com/0xnairb/mcp-aws-yolo/internal/vector"
)

// IndexCmd should be used to represent the 'index' command.
type IndexCmd struct {
	*cmd.BaseCmd
}

// NewIndexCmd creates a newly configured (Cobra) command.
func NewIndexCmd(baseCmd *cmd.BaseCmd) (*cobra.Command, error) {
	c := &IndexCmd{
		BaseCmd: baseCmd,
	}

	return &cobra.Command{
		Use:   "index",
		Short: "Rebuilds the vector index from the server registry",
		Long: "Rebuilds the vector index: embeds every registered server descriptor " +
			"and writes the points to the configured collection, replacing any " +
			"existing collection of the same name.",
		RunE: c.run,
	}, nil
}

func (c *IndexCmd) run(cobraCmd *cobra.Command, _ []string) error {
	logger := c.Logger()

	a, err := buildApp(logger)
	if err != nil {
		return err
	}
	defer a.router.Close()

	servers := a.registry.List()

	indexer := vector.NewIndexer(logger, a.embedder, a.store)
	if err := indexer.IndexAll(context.Background(), servers); err != nil {
		return err
	}

	fmt.Fprintf(cobraCmd.OutOrStdout(), "Indexed %d server(s) into collection '%s'\n",
		len(servers), a.cfg.Qdrant.Collection)

	return nil
}
