package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	appversion "github.com/trevorKirkby/network-routing-simulation/internal/version"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the netsim version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), appversion.Full("netsim"))
			return nil
		},
	}
}
