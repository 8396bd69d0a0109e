package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newProcessorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "processor",
		Short: "Manage the answer processing service",
	}

	cmd.AddCommand(newProcessorRunCmd())
	return cmd
}

func newProcessorRunCmd() *cobra.Command {
	var (
		port       int
		bind       string
		outputsDir string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the processing service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(false, true)
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.ProcessorPort = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}
			if outputsDir != "" {
				cfg.Outputs.Dir = outputsDir
			}

			srv, cleanup, err := buildProcessorServer(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override processor port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")
	cmd.Flags().StringVar(&outputsDir, "outputs", "", "override outputs directory")

	return cmd
}
