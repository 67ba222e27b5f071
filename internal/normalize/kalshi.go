package normalize

// kalshiCents reads a Kalshi price quoted in cents. Anything above 100 is taken
// to be in hundredths of a cent.
func kalshiCents(v float64) float64 {
	if v > 100 {
		return v / 100
	}
	return v
}

// kalshiDollars reads a Kalshi "*_dollars" price, a 0..1 fraction sent as a string.
func kalshiDollars(v float64) float64 {
	if v <= 1 {
		return v * 100
	}
	return kalshiCents(v)
}

// kalshiPrice prefers the cents field and falls back to its dollars twin.
func kalshiPrice(fields map[string]any, key string) float64 {
	if v := number(fields, key); v > 0 {
		return kalshiCents(v)
	}
	if v := number(fields, key+"_dollars"); v > 0 {
		return kalshiDollars(v)
	}
	return 0
}

func kalshiSignals(fields map[string]any) signals {
	s := signals{
		last: kalshiPrice(fields, "last_price"),
		bid:  kalshiPrice(fields, "yes_bid"),
		ask:  kalshiPrice(fields, "yes_ask"),
	}
	if prev := kalshiPrice(fields, "previous_price"); prev > 0 && s.last > 0 {
		change := s.last - prev
		s.change = &change
	}
	return s
}

// kalshiLiquidity reports liquidity in dollars; the plain field is in cents.
func kalshiLiquidity(fields map[string]any) float64 {
	if v := number(fields, "liquidity_dollars"); v != 0 {
		return v
	}
	return number(fields, "liquidity") / 100
}
