package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/keyreg/pkg/manifest"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check MANIFEST...",
		Short: "Verify manifests for duplicate idents, collisions and stale key pins",
		Long: `check loads each manifest into a throwaway strict registry. Duplicate
identifiers, identifiers whose hashes collide, and key pins that no
longer match their identifier all fail verification. The command exits
non-zero if any manifest fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			var failed int
			for _, path := range args {
				m, err := manifest.Load(path)
				if err == nil {
					_, err = m.Verify()
				}
				if err != nil {
					failed++
					fmt.Fprintf(out, "%s %s: %v\n", formatBold("FAIL"), path, err)
					continue
				}
				fmt.Fprintf(out, "%s %s: %d entries\n", formatBold("ok"), path, len(m.Items))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d manifests failed verification", failed, len(args))
			}
			return nil
		},
	}
}
