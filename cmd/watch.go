package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pricepeek/config"
	"pricepeek/scheduler"
	"pricepeek/scraper"
)

var (
	Watch = &cobra.Command{
		Use:   "watch <url>",
		Short: "re-checks one URL on a cron schedule",
		Long:  "re-checks one URL on a cron schedule (with seconds), printing each result line",
		Args:  productURLArg,
		RunE:  watch,
	}

	schedule string
)

func init() {
	Watch.Flags().StringVarP(&schedule, "schedule", "s", "", "cron schedule with seconds (default $WATCH_SCHEDULE)")
}

func watch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if schedule != "" {
		cfg.Watch.Schedule = schedule
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	out := a.output(cmd.OutOrStdout())
	defer a.close(out)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	target, _ := scraper.NormalizeURL(args[0])
	pw := scheduler.NewPriceWatcher(a.extractor, out, target, a.style, a.log)
	if err := pw.Start(ctx, cfg.Watch.Schedule); err != nil {
		return err
	}

	<-ctx.Done()
	a.log.Info("stopping price watcher")
	pw.Stop()
	return nil
}
