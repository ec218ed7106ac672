// Package cmd is the pricepeek command line.
package cmd

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pricepeek/config"
	"pricepeek/models"
	"pricepeek/scraper"
)

var Root = &cobra.Command{
	Use:           "pricepeek <url>",
	Short:         "prints the price of one product page",
	Long:          "opens the product page in a browser and prints one result line on stdout",
	Args:          productURLArg,
	RunE:          peek,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	Root.AddCommand(Serve, Watch)
}

// Execute runs the command tree. Any error maps to exit status 1.
func Execute() {
	if err := Root.Execute(); err != nil {
		os.Stderr.WriteString("pricepeek: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func peek(cmd *cobra.Command, args []string) error {
	a, err := newApp(config.Load())
	if err != nil {
		return err
	}
	out := a.output(cmd.OutOrStdout())
	defer a.close(out)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	target, _ := scraper.NormalizeURL(args[0])
	started := time.Now()
	res, err := a.extractor.Run(ctx, target)
	if err != nil {
		return err
	}
	return out.Write(ctx, models.NewCheck(target, res, a.style, started))
}
