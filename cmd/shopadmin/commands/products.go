package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MikeMC777/customtees/cmd/shopadmin/output"
	"github.com/MikeMC777/customtees/internal/form"
)

// productFlagFields maps command flags onto product form fields.
var productFlagFields = map[string]string{
	"title":       "title",
	"description": "description",
	"category":    "category",
	"brand":       "brand",
	"price":       "price",
	"sale-price":  "salePrice",
	"stock":       "totalStock",
	"review":      "averageReview",
	"image":       "image",
}

var productImageFile string

var productsCmd = &cobra.Command{
	Use:     "products",
	Aliases: []string{"product", "p"},
	Short:   "Manage the product catalog",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.products.Fetch(cmd.Context()); err != nil {
			return err
		}
		items := rt.products.Store.State().Items
		if jsonOutput {
			return output.JSON(items)
		}
		if len(items) == 0 {
			output.Warning("No products found")
			return nil
		}
		rows := make([][]string, 0, len(items))
		for _, p := range items {
			rows = append(rows, []string{
				p.ID, p.Title, p.Category, p.Brand,
				p.Price.StringFixed(2), p.SalePrice.StringFixed(2), strconv.Itoa(p.TotalStock),
			})
		}
		output.Table([]string{"ID", "TITLE", "CATEGORY", "BRAND", "PRICE", "SALE", "STOCK"}, rows)
		return nil
	},
}

var productsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a product",
	Long: `Create a product. Every field except --review is required; the image
is either a URL (--image) or a local file uploaded first (--image-file).

Examples:
  shopadmin products add --title "Logo Tee" --description "Cotton" --category men \
    --brand customtees --price 35 --sale-price 29.99 --stock 100 --image-file logo.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := form.NewProductForm()
		f.OpenCreate()
		return submitProductForm(cmd, f)
	},
}

var productsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update a product; unset flags keep their current value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := rt.client.GetProduct(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		f := form.NewProductForm()
		f.OpenEdit(*p)
		return submitProductForm(cmd, f)
	},
}

var productsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a product",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := rt.products.Delete(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !removed {
			output.Warning("Product %s not found", args[0])
			return nil
		}
		output.Success("Deleted product %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.AddCommand(productsListCmd, productsAddCmd, productsEditCmd, productsDeleteCmd)

	for _, c := range []*cobra.Command{productsAddCmd, productsEditCmd} {
		c.Flags().String("title", "", "Product title")
		c.Flags().String("description", "", "Product description")
		c.Flags().String("category", "", "Category (men, women, kids, ...)")
		c.Flags().String("brand", "", "Brand")
		c.Flags().String("price", "", "Price")
		c.Flags().String("sale-price", "", "Sale price")
		c.Flags().String("stock", "", "Total stock")
		c.Flags().String("review", "", "Average review, 0 to 5")
		c.Flags().String("image", "", "Image URL")
		c.Flags().StringVar(&productImageFile, "image-file", "", "Local image to upload")
	}
}

func submitProductForm(cmd *cobra.Command, f *form.ProductForm) error {
	ctx := cmd.Context()
	for flag, field := range productFlagFields {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		v, _ := cmd.Flags().GetString(flag)
		if err := f.Set(field, v); err != nil {
			return err
		}
	}

	if productImageFile != "" {
		file, err := os.Open(productImageFile)
		if err != nil {
			return fmt.Errorf("open image: %w", err)
		}
		url, err := rt.products.UploadImage(ctx, filepath.Base(productImageFile), file)
		_ = file.Close()
		if err != nil {
			return fmt.Errorf("upload image: %w", err)
		}
		output.Info("Uploaded image %s", url)
		_ = f.Set("image", url)
	}

	if errs := f.Errors(); len(errs) > 0 {
		printFieldErrors(form.ProductFieldNames, errs)
		return form.ErrInvalid
	}

	editing, id := f.Editing(), f.EditingID()
	ok, err := f.Submit(ctx, rt.products)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("product was not saved")
	}
	if editing {
		output.Success("Updated product %s", id)
	} else {
		output.Success("Created product")
	}
	return printProducts()
}

// printProducts shows the re-fetched list after a write.
func printProducts() error {
	if jsonOutput {
		return output.JSON(rt.products.Store.State().Items)
	}
	output.Muted("%d product(s) in catalog", len(rt.products.Store.State().Items))
	return nil
}
