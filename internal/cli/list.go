package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/keyreg/pkg/config"
	"github.com/arthur-debert/keyreg/pkg/manifest"
	"github.com/arthur-debert/keyreg/pkg/registry"
)

func newListCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list MANIFEST",
		Short: "List manifest entries with their local and global keys",
		Long: `list loads a manifest into a fresh registry and prints every entry with
the local key it was assigned and the global key derived from its
identifier. Capacity hints and the strict-idents default come from the
configuration file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return err
			}
			m, err := manifest.Load(args[0])
			if err != nil {
				return err
			}

			opts := []registry.Option{registry.WithCapacity(cfg.CapacityFor(m.Name))}
			if cfg.StrictIdents {
				opts = append(opts, registry.WithStrictIdents())
			}
			reg := registry.New[manifest.Payload](opts...)
			if _, err := m.Apply(reg); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %-20s  %s\n",
				formatBoldUpper("local"), formatBoldUpper("global key"), formatBoldUpper("ident"))
			for _, e := range reg.Entries() {
				fmt.Fprintf(out, "%5d  %-20d  %s\n",
					int(e.LocalKey()), uint64(e.GlobalKey()), e.Ident())
			}
			return nil
		},
	}
}
