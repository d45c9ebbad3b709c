package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MikeMC777/customtees/cmd/shopadmin/output"
	"github.com/MikeMC777/customtees/cmd/shopadmin/tui"
	"github.com/MikeMC777/customtees/internal/export"
)

var noExport bool

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive admin console",
	Long: `Open the interactive console: browse products, design submissions and
orders, edit the catalog and export order bills.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var flow *export.Flow
		if !noExport {
			f, cleanup, err := newExportFlow(ctx)
			if err != nil {
				output.Warning("Bill export disabled: %v", err)
				rt.log.Warn("export flow unavailable", zap.Error(err))
			} else {
				defer cleanup()
				flow = f
			}
		}
		return tui.RunConsole(ctx, tui.Deps{
			Products:  rt.products,
			Designs:   rt.designs,
			Orders:    rt.orders,
			Export:    flow,
			BasePrice: rt.cfg.Catalog.DesignBasePrice,
			Log:       rt.log,
		})
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().BoolVar(&noExport, "no-export", false, "Start without Chrome and email export")
}
