package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/codebyNJ/Justifyai/internal/config"
	"github.com/codebyNJ/Justifyai/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "justifyai",
		Short: "JustifyAI agent gateway and answer processor",
		Long: "JustifyAI fronts a hosted conversational agent and processes its replies\n" +
			"into formatted, source-linked, illustrated results.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A local .env is the usual place for API keys during development.
			godotenv.Load()

			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.justifyai/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newAgentCmd())
	cmd.AddCommand(newProcessorCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
