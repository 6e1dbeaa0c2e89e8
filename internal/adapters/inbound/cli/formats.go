package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rulegate/rulegate/internal/domain"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported detection rule formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range domain.Formats {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
}
