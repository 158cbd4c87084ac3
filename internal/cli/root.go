package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the top-level "bouwkost" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "bouwkost",
		Short:         "Construction cost estimation",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newInitCmd(app),
		newListCmd(app),
		newShowCmd(app),
		newEditCmd(app),
		newImportCmd(app),
		newExportCmd(app),
		newSyncCmd(app),
		newRemoveCmd(app),
	)

	return root
}
