package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/keyreg/internal/version"
	"github.com/arthur-debert/keyreg/pkg/config"
	"github.com/arthur-debert/keyreg/pkg/logging"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity int
		cfgFile   string
	)

	rootCmd := &cobra.Command{
		Use:   "keyreg",
		Short: "Inspect and verify dual-keyed registry manifests",
		Long: `keyreg works with insert-only registries whose entries carry two keys:
a stable global key (the hash of the entry's identifier, safe to persist
and transmit) and a local key (the insertion position, valid only inside
one running registry).

The CLI hashes identifiers, lists manifest files with the keys they will
produce, and verifies manifests for duplicate identifiers, hash
collisions and stale key pins.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity; the config file and
			// KEYREG_VERBOSITY can raise the level, the flag always can.
			level := verbosity
			cfg, err := config.Load(cfgFile)
			if err == nil && cfg.Verbosity > level {
				level = cfg.Verbosity
			}
			logging.SetupLogger(level)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to load config, using flag verbosity only")
			}
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/keyreg/keyreg.toml)")

	// Add all commands
	rootCmd.AddCommand(newHashCmd())
	rootCmd.AddCommand(newListCmd(&cfgFile))
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
