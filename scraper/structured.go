package scraper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricepeek/models"
)

// StructuredResult is what the embedded data blob says about the price.
type StructuredResult int

const (
	// StructuredAbsent means no usable blob: fall through to the DOM.
	StructuredAbsent StructuredResult = iota
	// StructuredPrice means the blob carried a price pair.
	StructuredPrice
	// StructuredNoPrices means the blob listed no prices at all.
	StructuredNoPrices
)

// ReadStructured looks for the JSON data script with the given id and
// reads props.pageProps.product.prices from it. Any shape it does not
// recognise is reported as StructuredAbsent together with the reason.
func ReadStructured(snap *Snapshot, scriptID string) (models.PriceRecord, StructuredResult, error) {
	script := snap.Document().Find("script").FilterFunction(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		typ, _ := s.Attr("type")
		return id == scriptID && strings.EqualFold(strings.TrimSpace(typ), "application/json")
	}).First()
	if script.Length() == 0 {
		return models.PriceRecord{}, StructuredAbsent, nil
	}

	var blob map[string]any
	dec := json.NewDecoder(strings.NewReader(script.Text()))
	dec.UseNumber()
	if err := dec.Decode(&blob); err != nil {
		return models.PriceRecord{}, StructuredAbsent, fmt.Errorf("decode %s: %w", scriptID, err)
	}

	props := child(blob, "props")
	if props == nil {
		props = child(blob, "properties")
	}
	prices, ok := child(child(child(props, "pageProps"), "product"), "prices").([]any)
	if !ok {
		return models.PriceRecord{}, StructuredAbsent, fmt.Errorf("%s: no prices list", scriptID)
	}
	if len(prices) == 0 {
		return models.NotFound(), StructuredNoPrices, nil
	}

	value, ok := child(child(prices[0], "price"), "value").(map[string]any)
	if !ok {
		return models.PriceRecord{}, StructuredAbsent, fmt.Errorf("%s: first price has no value", scriptID)
	}
	regular, ok := value["amount"]
	if !ok {
		return models.PriceRecord{}, StructuredAbsent, fmt.Errorf("%s: value has no amount", scriptID)
	}
	discounted := child(child(prices[0], "price"), "private-price")

	return models.Pair(amountString(regular), amountString(child(discounted, "amount"))), StructuredPrice, nil
}

// child returns m[key] when m is a JSON object, else nil.
func child(m any, key string) any {
	obj, ok := m.(map[string]any)
	if !ok {
		return nil
	}
	return obj[key]
}

func amountString(v any) string {
	switch a := v.(type) {
	case nil:
		return models.ZeroPrice
	case string:
		return a
	case json.Number:
		return a.String()
	case bool:
		return fmt.Sprint(a)
	default:
		// Objects and lists have no printable amount.
		return models.ZeroPrice
	}
}
