package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/0xnairb/mcp-aws-yolo/internal/cmd"
	"github.com/0xnairb/mcp-aws-yolo/internal/daemon"
)

// DaemonCmd should be used to represent the 'daemon' command.
type DaemonCmd struct {
	*cmd.BaseCmd
	Addr        string
	CORSOrigins []string
}

// NewDaemonCmd creates a newly configured (Cobra) command.
func NewDaemonCmd(baseCmd *cmd.BaseCmd) (*cobra.Command, error) {
	c := &DaemonCmd{
		BaseCmd: baseCmd,
	}

	cobraCommand := &cobra.Command{
		Use:   "daemon [--addr] [--cors-origin]",
		Short: "Launches the routing daemon with an HTTP API",
		Long:  "Launches the routing daemon, exposing prompt routing and tool invocation via HTTP API",
		RunE:  c.run,
	}

	cobraCommand.Flags().StringVar(
		&c.Addr,
		"addr",
		"0.0.0.0:8090",
		"Address for the daemon to bind",
	)

	cobraCommand.Flags().StringSliceVar(
		&c.CORSOrigins,
		"cors-origin",
		nil,
		"Origin allowed for cross-origin requests, repeatable (CORS is off when unset)",
	)

	return cobraCommand, nil
}

// run is configured (via NewDaemonCmd) to be called by the Cobra framework when the command is executed.
func (c *DaemonCmd) run(_ *cobra.Command, _ []string) error {
	logger := c.Logger()

	addr := strings.TrimSpace(c.Addr)
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid address '%s': %w", addr, err)
	}

	a, err := buildApp(logger)
	if err != nil {
		return err
	}
	defer a.router.Close()

	var opts []daemon.APIOption
	if len(c.CORSOrigins) > 0 {
		opts = append(opts, daemon.WithCORSEnabled(c.CORSOrigins))
	}

	srv, err := daemon.NewAPIServer(daemon.APIDependencies{
		Router: a.router,
		Addr:   addr,
		Logger: logger,
	}, opts...)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer cancel()

	if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
