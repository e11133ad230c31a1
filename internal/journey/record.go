package journey

import "strings"

// FilterPriced drops options with no fare attached. Options without a
// price never reach cheapest selection.
func FilterPriced(options []*Option) []*Option {
	priced := make([]*Option, 0, len(options))
	for _, o := range options {
		if o != nil && o.HasPrice() {
			priced = append(priced, o)
		}
	}
	return priced
}

// SelectCheapest returns the lowest-priced option using a stable
// left-to-right fold: ties keep the earliest-encountered option.
// All options must be priced. Returns nil for an empty input.
func SelectCheapest(options []*Option) *Option {
	var cheapest *Option
	for _, o := range options {
		if o == nil || !o.HasPrice() {
			continue
		}
		if cheapest == nil || o.Price.Amount < cheapest.Price.Amount {
			cheapest = o
		}
	}
	return cheapest
}

// ExtractRecord normalizes an option into a summary record. Walking legs
// are excluded from the train name and transfer count; repeated line
// names are deduplicated preserving first-seen order.
func ExtractRecord(o *Option) Record {
	rec := Record{
		Departure: o.Departure(),
		Arrival:   o.Arrival(),
		LegCount:  len(o.Legs),
	}
	if o.Price != nil {
		rec.Price = o.Price.Amount
		rec.Currency = o.Price.Currency
	}

	transportLegs := 0
	seen := make(map[string]bool)
	var names []string
	for i := range o.Legs {
		leg := &o.Legs[i]
		if !leg.IsTransportation() {
			continue
		}
		transportLegs++
		name := leg.Line.Name
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	rec.TrainName = strings.Join(names, " + ")
	if transportLegs > 1 {
		rec.Transfers = transportLegs - 1
	}
	return rec
}
