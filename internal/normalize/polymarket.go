package normalize

import "github.com/alanyoungcy/marketboard/internal/domain"

// polymarketPercent converts a Gamma price to percent. Gamma quotes 0..1
// fractions; values above 100 are taken to be in hundredths.
func polymarketPercent(v float64) float64 {
	switch {
	case v <= 1:
		return v * 100
	case v > 100:
		return v / 100
	}
	return v
}

func polymarketSignals(fields map[string]any) signals {
	prices := priceList(fields["outcomePrices"])
	for i := range prices {
		prices[i] = polymarketPercent(prices[i])
	}
	s := signals{
		outcomes:      stringList(fields["outcomes"]),
		outcomePrices: prices,
		last:          polymarketPercent(number(fields, "lastTradePrice", "last_trade_price", "last_price")),
		bid:           polymarketPercent(number(fields, "bestBid", "best_bid")),
		ask:           polymarketPercent(number(fields, "bestAsk", "best_ask")),
	}
	if v, ok := present(fields, "oneDayPriceChange", "one_day_price_change"); ok {
		change := v * 100
		s.change = &change
	}
	return s
}

func liquidity(src domain.Source, fields map[string]any) float64 {
	if src == domain.SourceKalshi {
		return kalshiLiquidity(fields)
	}
	return number(fields, "liquidity", "liquidityNum", "liquidityClob")
}
