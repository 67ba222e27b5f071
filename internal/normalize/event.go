package normalize

import "github.com/alanyoungcy/marketboard/internal/domain"

// eventOverrides are event-level fields that replace the sub-market's when set.
var eventOverrides = []string{
	"id", "slug", "category",
	"volume", "volume24hr", "liquidity",
	"endDate", "closed", "active", "status",
}

// MapEvent projects an event record onto the market shape using its first
// sub-market for prices. Event title, slug, volumes and dates win over the
// sub-market's when present.
func (n *Normalizer) MapEvent(rec domain.RawRecord) domain.Market {
	merged := map[string]any{}
	if first, ok := firstSubMarket(rec.Fields); ok {
		for k, v := range first {
			merged[k] = v
		}
	}
	for _, k := range eventOverrides {
		if v, ok := rec.Fields[k]; ok && v != nil {
			merged[k] = v
		}
	}
	if title := text(rec.Fields, "title"); title != "" {
		merged["question"] = title
	}

	return n.Normalize(domain.RawRecord{
		Source: rec.Source,
		Kind:   domain.RecordKindMarket,
		Fields: merged,
	})
}

func firstSubMarket(fields map[string]any) (map[string]any, bool) {
	list, ok := fields["markets"].([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	first, ok := list[0].(map[string]any)
	return first, ok
}
