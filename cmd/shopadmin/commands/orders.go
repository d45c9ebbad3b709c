package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeMC777/customtees/cmd/shopadmin/output"
	"github.com/MikeMC777/customtees/internal/export"
)

var exportEmail string

var ordersCmd = &cobra.Command{
	Use:     "orders",
	Aliases: []string{"order", "o"},
	Short:   "Inspect orders and export bills",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.orders.Fetch(cmd.Context()); err != nil {
			return err
		}
		items := rt.orders.Store.State().Items
		if jsonOutput {
			return output.JSON(items)
		}
		if len(items) == 0 {
			output.Warning("No orders found")
			return nil
		}
		rows := make([][]string, 0, len(items))
		for _, o := range items {
			rows = append(rows, []string{
				o.ID,
				o.OrderDate.Format("2006-01-02"),
				output.StatusIcon(o.OrderStatus) + " " + o.OrderStatus,
				output.StatusIcon(o.PaymentStatus) + " " + o.PaymentStatus,
				o.TotalAmount.StringFixed(2),
			})
		}
		output.Table([]string{"ID", "DATE", "STATUS", "PAYMENT", "TOTAL"}, rows)
		return nil
	},
}

var ordersShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := rt.orders.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(o)
		}
		output.Section("Order " + o.ID)
		output.Info("Date     %s", o.OrderDate.Format("2006-01-02 15:04"))
		output.Info("Status   %s", o.OrderStatus)
		output.Info("Payment  %s (%s)", o.PaymentMethod, o.PaymentStatus)
		output.Info("Ship to  %s, %s %s", o.AddressInfo.Address, o.AddressInfo.City, o.AddressInfo.Pincode)
		rows := make([][]string, 0, len(o.CartItems))
		for _, it := range o.CartItems {
			rows = append(rows, []string{it.Title, fmt.Sprint(it.Quantity), it.Price.StringFixed(2), it.LineTotal().StringFixed(2)})
		}
		output.Section("Items")
		output.Table([]string{"ITEM", "QTY", "PRICE", "TOTAL"}, rows)
		output.Muted("Total %s", o.TotalAmount.StringFixed(2))
		return nil
	},
}

var ordersExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Render the order bill as PDF, upload it and email the link",
	Long: `Export an order bill. The order view is captured with headless Chrome,
printed to a one page PDF, uploaded through the API and the link is sent
to --email through EmailJS.

Examples:
  shopadmin orders export 6f1c... --email buyer@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		o, err := rt.orders.Get(ctx, args[0])
		if err != nil {
			return err
		}
		flow, cleanup, err := newExportFlow(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		stop := flow.Observe(func(ev export.Event) {
			if ev.Err == nil && ev.Stage != export.StageDone {
				output.Muted("%s...", ev.Stage)
			}
		})
		defer stop()

		link, err := flow.Run(ctx, *o, exportEmail)
		if err != nil {
			var serr *export.StageError
			if errors.As(err, &serr) {
				output.Error("%s", serr.UserMessage())
			}
			return err
		}
		output.Success("Bill sent to %s", exportEmail)
		output.Info("%s", link)
		return nil
	},
}

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show sales totals and the daily sales series",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := rt.client.Analytics(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(s)
		}
		output.Section("Sales")
		output.Table([]string{"METRIC", "VALUE"}, [][]string{
			{"Total sales", s.TotalSales.StringFixed(2)},
			{"Orders", fmt.Sprint(s.TotalOrders)},
			{"Confirmed", fmt.Sprint(s.TotalConfirmedOrders)},
			{"Pending", fmt.Sprint(s.TotalPendingOrders)},
			{"Pending payments", fmt.Sprint(s.TotalPendingPayments)},
			{"Products", fmt.Sprint(s.TotalProducts)},
		})
		if len(s.Sales) > 0 {
			rows := make([][]string, 0, len(s.Sales))
			for _, d := range s.Sales {
				rows = append(rows, []string{d.Date, fmt.Sprint(d.Orders), d.Amount.StringFixed(2)})
			}
			output.Section("By day")
			output.Table([]string{"DATE", "ORDERS", "AMOUNT"}, rows)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ordersCmd, analyticsCmd)
	ordersCmd.AddCommand(ordersListCmd, ordersShowCmd, ordersExportCmd)

	ordersExportCmd.Flags().StringVar(&exportEmail, "email", "", "Recipient email (required)")
	_ = ordersExportCmd.MarkFlagRequired("email")
}
