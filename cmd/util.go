package cmd

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pricepeek/config"
	"pricepeek/database"
	"pricepeek/models"
	"pricepeek/repository"
	"pricepeek/scraper"
	"pricepeek/sink"
)

// productURLArg accepts exactly one absolute http(s) URL.
func productURLArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	_, err := scraper.NormalizeURL(args[0])
	return err
}

// newLogger logs to w at the named level, falling back to info.
func newLogger(w io.Writer, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithField("level", level).Warn("unknown LOG_LEVEL, using info")
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// app holds what every subcommand builds from the environment.
type app struct {
	cfg       *config.Config
	log       *logrus.Logger
	style     models.OutputStyle
	extractor *scraper.Extractor

	// Set once the Postgres sink is up.
	checks *repository.CheckRepository
}

func newApp(cfg *config.Config) (*app, error) {
	logger := newLogger(os.Stderr, cfg.LogLevel)

	fp := config.DefaultFingerprints()
	if cfg.Extractor.FingerprintsFile != "" {
		loaded, err := config.LoadFingerprints(cfg.Extractor.FingerprintsFile)
		if err != nil {
			return nil, err
		}
		fp = loaded
		logger.WithField("file", cfg.Extractor.FingerprintsFile).Debug("loaded fingerprints")
	}

	provider := scraper.NewRodProvider(cfg.Browser, logger)
	return &app{
		cfg:       cfg,
		log:       logger,
		style:     models.ParseOutputStyle(cfg.Extractor.OutputStyle),
		extractor: scraper.NewExtractor(provider, fp, scraper.OptionsFromConfig(cfg.Extractor), logger),
	}, nil
}

// recorders returns the configured optional sinks. A sink that can't be
// reached is logged and left out.
func (a *app) recorders() []sink.Sink {
	var out []sink.Sink

	if a.cfg.Sinks.DatabaseURL != "" {
		if err := database.InitDatabase(a.cfg.Sinks.DatabaseURL); err != nil {
			a.log.WithError(err).Warn("⚠️ Postgres sink disabled")
		} else if err := database.CreateTables(); err != nil {
			a.log.WithError(err).Warn("⚠️ Postgres sink disabled")
		} else {
			a.checks = repository.NewCheckRepository(database.DB)
			out = append(out, sink.NewPostgresSink(a.checks))
		}
	}

	if a.cfg.Sinks.InfluxEnabled() {
		out = append(out, sink.NewInfluxSink(a.cfg.Sinks))
	}
	return out
}

// output is stdout plus every optional sink.
func (a *app) output(stdout io.Writer) sink.Sink {
	return sink.NewMulti(a.log, sink.NewStdoutSink(stdout), a.recorders()...)
}

func (a *app) close(s sink.Sink) {
	if s != nil {
		if err := s.Close(); err != nil {
			a.log.WithError(err).Warn("closing sinks")
		}
	}
	if err := database.CloseDatabase(); err != nil {
		a.log.WithError(err).Warn("closing database")
	}
}
