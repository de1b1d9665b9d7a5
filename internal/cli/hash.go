package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/keyreg/pkg/registry"
)

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash IDENT...",
		Short: "Print the global key for each identifier",
		Long: `hash computes the stable global key for each identifier, the same value
a registry assigns on insertion. The output is one line per identifier:
the key followed by the identifier it was derived from.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, ident := range args {
				fmt.Fprintf(out, "%d\t%s\n", uint64(registry.GlobalKeyOf(ident)), ident)
			}
			return nil
		},
	}
}
