package normalize

import "strings"

// signals holds every price-like input found on a record, already converted
// to the 0..100 percentage scale. Zero means "not supplied".
type signals struct {
	outcomes      []string
	outcomePrices []float64
	last          float64
	bid           float64
	ask           float64
	change        *float64
}

// probabilities applies the derivation priority: outcome price by name, last
// trade, bid/ask midpoint, then a single-sided quote. With no usable signal
// the result is 0/100, which is indistinguishable from a certain "No"; callers
// must tolerate that loss.
func (s signals) probabilities() (yes, no int) {
	if y, n, ok := s.fromOutcomes(); ok {
		return clampPercent(y), clampPercent(n)
	}

	var p float64
	switch {
	case s.last > 0:
		p = s.last
	case s.bid > 0 && s.ask > 0:
		p = (s.bid + s.ask) / 2
	case s.bid > 0:
		p = s.bid
	case s.ask > 0:
		p = s.ask
	}
	yes = clampPercent(p)
	return yes, clampPercent(100 - float64(yes))
}

// fromOutcomes reads the yes price from the outcome arrays. A separate "No"
// price is used as-is, so the pair need not sum to exactly 100.
func (s signals) fromOutcomes() (yes, no float64, ok bool) {
	if len(s.outcomePrices) == 0 {
		return 0, 0, false
	}
	yesIdx, noIdx := -1, -1
	for i, name := range s.outcomes {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "yes":
			yesIdx = i
		case "no":
			noIdx = i
		}
	}
	// Two named outcomes ("Up"/"Down", candidate names) read as yes/no by position.
	if yesIdx < 0 && len(s.outcomes) == 2 {
		yesIdx, noIdx = 0, 1
	}
	if yesIdx < 0 || yesIdx >= len(s.outcomePrices) || s.outcomePrices[yesIdx] <= 0 {
		return 0, 0, false
	}
	yes = s.outcomePrices[yesIdx]
	if noIdx >= 0 && noIdx < len(s.outcomePrices) && s.outcomePrices[noIdx] > 0 {
		return yes, s.outcomePrices[noIdx], true
	}
	return yes, 100 - float64(clampPercent(yes)), true
}
