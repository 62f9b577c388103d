// Package transform converts raw order batches into validated, repaired,
// analytics-ready records.
//
// The stage order is fixed and load-bearing: fields are trimmed before any
// validity check (so whitespace-only means missing), records with an
// unparseable order date are dropped before fill values are computed (so
// garbage rows cannot skew the medians), and repair masks are evaluated
// before any value is overwritten (so one record can be counted under several
// repair conditions but each condition at most once).
package transform

import (
	"math"
	"sort"

	"orderetl/pkg/records"
)

// UnknownCustomer replaces an empty customer identifier. It is a fixed
// sentinel because no statistical repair is meaningful for a key field.
const UnknownCustomer = "UNKNOWN_CUSTOMER"

// Stats carries the per-batch counters and the two fill values used during
// repair. The fill values render under the shared rounding contract
// (two decimals, integral values as integers).
type Stats struct {
	TransformedRecords           int            `json:"transformed_records"`
	DroppedInvalidOrderDateCount int            `json:"dropped_invalid_order_date_count"`
	FilledCustomerIDCount        int            `json:"filled_customer_id_count"`
	FilledQuantityCount          int            `json:"filled_quantity_count"`
	FilledUnitPriceCount         int            `json:"filled_unit_price_count"`
	QuantityFillValue            records.Number `json:"quantity_fill_value"`
	UnitPriceFillValue           records.Number `json:"unit_price_fill_value"`
}

// Observer receives a notification after each stage completes, carrying the
// stage name and the number of records still in flight. It exists for debug
// instrumentation (stage dumps, progress logging); the zero observer is nil
// and costs nothing.
type Observer interface {
	StageDone(stage string, n int)
}

// Transformer cleans one bounded batch at a time. It holds no per-batch
// state, so a single Transformer may be shared across sequential runs.
type Transformer struct {
	obs Observer
}

// New returns a Transformer. obs may be nil.
func New(obs Observer) *Transformer { return &Transformer{obs: obs} }

// workRow is the mutable per-record scratch state threaded through the
// stages. qtyOK/priceOK distinguish "parsed fine" from the missing sentinel
// state that falls through to repair.
type workRow struct {
	raw     records.Raw
	dateISO string
	qty     float64
	qtyOK   bool
	price   float64
	priceOK bool
}

// Transform runs the full stage sequence over recs and returns the cleaned
// records in (order_date, order_id) order together with the batch Stats.
//
// It never fails: an empty batch yields zero records with fill values at
// their fallback constants, and a batch where every date is corrupt legally
// yields zero survivors. The conservation law
//
//	transformed_records + dropped_invalid_order_date_count == len(recs)
//
// holds for every input.
func (t *Transformer) Transform(recs []records.Raw) ([]records.Cleaned, Stats) {
	var stats Stats

	// Trim. Whitespace-only becomes empty so later checks see it as missing.
	work := make([]workRow, 0, len(recs))
	for _, r := range recs {
		work = append(work, workRow{raw: trimRaw(r)})
	}
	t.notify("trim", len(work))

	// Date parse & filter. The only stage that removes records.
	kept := work[:0]
	for i := range work {
		iso, ok := parseDate(work[i].raw.OrderDate)
		if !ok {
			stats.DroppedInvalidOrderDateCount++
			continue
		}
		work[i].dateISO = iso
		kept = append(kept, work[i])
	}
	work = kept
	t.notify("date_filter", len(work))

	// Numeric parse. Unparseable values stay in the missing state.
	for i := range work {
		work[i].qty, work[i].qtyOK = parseNumber(work[i].raw.Quantity)
		work[i].price, work[i].priceOK = parseNumber(work[i].raw.UnitPrice)
	}
	t.notify("numeric_parse", len(work))

	// Fill-value computation: first pass of the fold. Quantities must be
	// strictly positive to vote; prices vote at zero and above.
	var qtys, prices []float64
	for i := range work {
		if work[i].qtyOK && work[i].qty > 0 {
			qtys = append(qtys, work[i].qty)
		}
		if work[i].priceOK && work[i].price >= 0 {
			prices = append(prices, work[i].price)
		}
	}
	qtyFill := median(qtys, 1)
	priceFill := median(prices, 0)
	stats.QuantityFillValue = records.Number(qtyFill)
	stats.UnitPriceFillValue = records.Number(priceFill)
	t.notify("fill_values", len(work))

	// Repair: second pass, masks computed before any overwrite.
	for i := range work {
		w := &work[i]
		custEmpty := w.raw.CustomerID == ""
		qtyBad := !w.qtyOK || w.qty <= 0
		priceBad := !w.priceOK || w.price < 0

		if custEmpty {
			stats.FilledCustomerIDCount++
			w.raw.CustomerID = UnknownCustomer
		}
		if qtyBad {
			stats.FilledQuantityCount++
			w.qty = qtyFill
		}
		if priceBad {
			stats.FilledUnitPriceCount++
			w.price = priceFill
		}
	}
	t.notify("repair", len(work))

	// Finalize & derive.
	out := make([]records.Cleaned, 0, len(work))
	for i := range work {
		w := &work[i]
		qty := int(math.Round(w.qty))
		price := records.Round2(w.price)
		out = append(out, records.Cleaned{
			OrderID:    w.raw.OrderID,
			OrderDate:  w.dateISO,
			CustomerID: w.raw.CustomerID,
			Product:    w.raw.Product,
			Quantity:   qty,
			UnitPrice:  records.Number(price),
			OrderMonth: w.dateISO[:7],
			LineTotal:  records.Number(records.Round2(float64(qty) * price)),
		})
	}
	t.notify("finalize", len(out))

	// Stable ascending sort by (order_date, order_id).
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderDate != out[j].OrderDate {
			return out[i].OrderDate < out[j].OrderDate
		}
		return out[i].OrderID < out[j].OrderID
	})
	t.notify("sort", len(out))

	stats.TransformedRecords = len(out)
	return out, stats
}

func (t *Transformer) notify(stage string, n int) {
	if t.obs != nil {
		t.obs.StageDone(stage, n)
	}
}
