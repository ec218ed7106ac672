package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"pricepeek/models"
	"pricepeek/sink"
)

// Extractor runs one extraction.
type Extractor interface {
	Run(ctx context.Context, url string) (models.Extraction, error)
}

// PriceWatcher re-checks a single product URL on a cron schedule.
type PriceWatcher struct {
	cron      *cron.Cron
	extractor Extractor
	sink      sink.Sink
	url       string
	style     models.OutputStyle
	log       *logrus.Entry

	// The startup run is not tracked by cron.
	initial sync.WaitGroup
}

func NewPriceWatcher(extractor Extractor, out sink.Sink, url string, style models.OutputStyle, logger *logrus.Logger) *PriceWatcher {
	return &PriceWatcher{
		cron:      cron.New(cron.WithSeconds()),
		extractor: extractor,
		sink:      out,
		url:       url,
		style:     style,
		log:       logger.WithField("url", url),
	}
}

// Start schedules the check and runs one immediately. A run still in
// progress when the next tick fires causes that tick to be skipped.
func (pw *PriceWatcher) Start(ctx context.Context, schedule string) error {
	job := cron.NewChain(cron.SkipIfStillRunning(cron.PrintfLogger(pw.log))).
		Then(cron.FuncJob(func() {
			if _, err := pw.CheckNow(ctx); err != nil {
				pw.log.WithError(err).Error("❌ scheduled price check failed")
			}
		}))

	if _, err := pw.cron.AddJob(schedule, job); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	// Also run immediately on startup
	pw.initial.Add(1)
	go func() {
		defer pw.initial.Done()
		job.Run()
	}()

	pw.cron.Start()
	pw.log.WithField("schedule", schedule).Info("Price watcher scheduled")
	return nil
}

// Stop stops the schedule and waits for a running check to finish.
func (pw *PriceWatcher) Stop() {
	<-pw.cron.Stop().Done()
	pw.initial.Wait()
}

// CheckNow runs one extraction and hands the result to the sink.
func (pw *PriceWatcher) CheckNow(ctx context.Context) (models.Check, error) {
	started := time.Now()
	res, err := pw.extractor.Run(ctx, pw.url)
	if err != nil {
		return models.Check{}, err
	}

	check := models.NewCheck(pw.url, res, pw.style, started)
	if err := pw.sink.Write(ctx, check); err != nil {
		return check, fmt.Errorf("deliver check: %w", err)
	}
	return check, nil
}
