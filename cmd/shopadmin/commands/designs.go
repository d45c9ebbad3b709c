package commands

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MikeMC777/customtees/cmd/shopadmin/output"
	"github.com/MikeMC777/customtees/internal/design"
	"github.com/MikeMC777/customtees/internal/form"
)

var (
	designForm   = form.NewDesignForm()
	promoteExtra design.PromoteInput
	promoteSale  string
)

var designsCmd = &cobra.Command{
	Use:     "designs",
	Aliases: []string{"design", "d"},
	Short:   "Review design submissions",
}

var designsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending design submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.designs.Fetch(cmd.Context()); err != nil {
			return err
		}
		items := rt.designs.Store.State().Items
		if jsonOutput {
			return output.JSON(items)
		}
		if len(items) == 0 {
			output.Warning("No design submissions")
			return nil
		}
		base := rt.cfg.Catalog.DesignBasePrice
		rows := make([][]string, 0, len(items))
		for _, s := range items {
			rows = append(rows, []string{
				s.ID, s.Title, s.Name, s.Email, s.Phone,
				strconv.Itoa(s.Margin), s.Price(base).StringFixed(2),
			})
		}
		output.Table([]string{"ID", "TITLE", "NAME", "EMAIL", "PHONE", "MARGIN", "PRICE"}, rows)
		return nil
	},
}

var designsSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a design on behalf of a customer",
	Long: `Submit a design. The image file is uploaded first and the submission
is created with the returned URL.

Examples:
  shopadmin designs submit --title "Logo Tee" --name Ana --email ana@example.com \
    --phone 3001234567 --margin 15 --image art.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if errs := designForm.Errors(); len(errs) > 0 {
			printFieldErrors(form.DesignFieldNames, errs)
			return form.ErrInvalid
		}
		designForm.Open = true
		ok, err := designForm.Submit(cmd.Context(), rt.designs)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("design was not submitted")
		}
		output.Success("Design submitted")
		return nil
	},
}

var designsRejectCmd = &cobra.Command{
	Use:     "reject <id>",
	Aliases: []string{"delete", "rm"},
	Short:   "Reject (delete) a design submission",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := rt.designs.Reject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !removed {
			output.Warning("Design %s not found", args[0])
			return nil
		}
		output.Success("Rejected design %s", args[0])
		return nil
	},
}

var designsPromoteCmd = &cobra.Command{
	Use:   "promote <id>",
	Short: "Turn a design submission into a catalog product",
	Long: `Promote a design. The product is priced at the design base price plus
the submission's margin unless --sale-price is given.

Examples:
  shopadmin designs promote 6f1c... --category men --brand customtees --stock 50`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		extra := promoteExtra
		if promoteSale != "" {
			d, err := decimal.NewFromString(promoteSale)
			if err != nil || d.IsNegative() {
				return fmt.Errorf("--sale-price must be a non-negative number")
			}
			extra.SalePrice = &d
		}
		ok, err := rt.designs.Promote(cmd.Context(), args[0], extra)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("design %s was not promoted", args[0])
		}
		output.Success("Promoted design %s", args[0])
		return printProducts()
	},
}

func init() {
	rootCmd.AddCommand(designsCmd)
	designsCmd.AddCommand(designsListCmd, designsSubmitCmd, designsRejectCmd, designsPromoteCmd)

	f := designsSubmitCmd.Flags()
	f.StringVar(&designForm.Fields.Title, "title", "", "Design title")
	f.StringVar(&designForm.Fields.Description, "description", "", "Design description")
	f.StringVar(&designForm.Fields.Name, "name", "", "Customer name")
	f.StringVar(&designForm.Fields.Email, "email", "", "Customer email")
	f.StringVar(&designForm.Fields.Phone, "phone", "", "Customer phone, 10 digits")
	f.StringVar(&designForm.Fields.Margin, "margin", "", "Designer margin, 0 to 40")
	f.StringVar(&designForm.Fields.ImagePath, "image", "", "Local image file")

	p := designsPromoteCmd.Flags()
	p.StringVar(&promoteExtra.Title, "title", "", "Override the product title")
	p.StringVar(&promoteExtra.Description, "description", "", "Override the product description")
	p.StringVar(&promoteExtra.Category, "category", "", "Product category")
	p.StringVar(&promoteExtra.Brand, "brand", "", "Product brand")
	p.IntVar(&promoteExtra.TotalStock, "stock", 0, "Initial stock")
	p.StringVar(&promoteSale, "sale-price", "", "Sale price")
}
