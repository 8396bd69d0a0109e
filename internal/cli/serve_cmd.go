package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the agent gateway and the processor together",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(true, true)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			agentSrv, err := buildAgentServer(ctx, cfg)
			if err != nil {
				return err
			}
			procSrv, cleanup, err := buildProcessorServer(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return agentSrv.Start(ctx) })
			g.Go(func() error { return procSrv.Start(ctx) })
			return g.Wait()
		},
	}
}
