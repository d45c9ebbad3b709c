package commands

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MikeMC777/customtees/cmd/shopadmin/output"
	"github.com/MikeMC777/customtees/internal/apiclient"
	"github.com/MikeMC777/customtees/internal/config"
	"github.com/MikeMC777/customtees/internal/logger"
	"github.com/MikeMC777/customtees/internal/state"
)

var (
	// Global flags
	apiURL     string
	verbose    bool
	jsonOutput bool
)

// runtime is what every subcommand works against, built once flags are parsed.
type runtime struct {
	cfg      *config.Config
	log      *zap.Logger
	client   *apiclient.Client
	products *state.Products
	designs  *state.Designs
	orders   *state.Orders
}

var rt *runtime

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shopadmin",
	Short: "CustomTees admin console",
	Long: `shopadmin manages the CustomTees storefront through its HTTP API.

Features:
  - Product catalog management with image upload
  - Design submission review and promotion to products
  - Order listing and PDF bill export by email
  - Sales analytics
  - Interactive console (shopadmin console)`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output.Error("%v", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Storefront API base URL (overrides api.base_url)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(apiURL, "/")
	}

	// logs go to stderr so table and JSON output stay clean
	lc := logger.Config{Level: "warn", Format: "console", Output: "stderr"}
	if verbose {
		lc.Level = "debug"
	}
	log := logger.New(lc).Named("shopadmin")

	client := apiclient.New(cfg.API.BaseURL, cfg.API.Timeout)
	products := state.NewProducts(client, log)
	rt = &runtime{
		cfg:      cfg,
		log:      log,
		client:   client,
		products: products,
		designs:  state.NewDesigns(client, products, log),
		orders:   state.NewOrders(client, log),
	}
	log.Debug("api client ready", zap.String("base_url", cfg.API.BaseURL))
	return nil
}

// printFieldErrors lists inline form errors in field order.
func printFieldErrors(names []string, errs map[string]string) {
	for _, name := range names {
		if msg, ok := errs[name]; ok {
			output.Error("%s: %s", name, msg)
		}
	}
	if msg, ok := errs["form"]; ok {
		output.Error("%s", msg)
	}
}
