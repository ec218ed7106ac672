package sink

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"pricepeek/config"
	"pricepeek/models"
	"pricepeek/scraper"
)

const measurement = "price_check"

// pointWriter is the part of api.WriteAPIBlocking the sink uses.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// InfluxSink writes one price_check point per check.
type InfluxSink struct {
	client influxdb2.Client
	writer pointWriter
	parser *scraper.LocaleParser
}

// NewInfluxSink connects to the configured InfluxDB bucket.
func NewInfluxSink(cfg config.SinkConfig) *InfluxSink {
	client := influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)
	return &InfluxSink{
		client: client,
		writer: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		parser: scraper.NewLocaleParser(),
	}
}

func newInfluxSinkWithWriter(w pointWriter) *InfluxSink {
	return &InfluxSink{writer: w, parser: scraper.NewLocaleParser()}
}

func (s *InfluxSink) Write(ctx context.Context, c models.Check) error {
	h := History(c, s.parser)

	point := influxdb2.NewPointWithMeasurement(measurement).
		AddTag("url", h.URL).
		AddTag("path", h.Path).
		AddTag("kind", h.Kind).
		AddField("regular", h.RegularValue).
		AddField("discounted", h.DiscountedValue).
		AddField("line", h.Line).
		AddField("duration_ms", h.DurationMs).
		SetTime(h.CheckedAt)
	if h.Currency != "" {
		point.AddTag("currency", h.Currency)
	}

	if err := s.writer.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("write point to InfluxDB: %w", err)
	}
	return nil
}

func (s *InfluxSink) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
