// Package rank orders normalized markets and slices them into pages.
package rank

import (
	"math"
	"sort"

	"github.com/alanyoungcy/marketboard/internal/domain"
)

// Less is the default priority chain: markets with a live price come first,
// then higher 24h volume, higher total volume, higher liquidity. Remaining
// ties are broken by ID so equal inputs always produce the same order.
func Less(a, b *domain.Market) bool {
	if la, lb := a.HasLivePrice(), b.HasLivePrice(); la != lb {
		return la
	}
	if a.Volume24h != b.Volume24h {
		return a.Volume24h > b.Volume24h
	}
	if a.VolumeTotal != b.VolumeTotal {
		return a.VolumeTotal > b.VolumeTotal
	}
	if a.Liquidity != b.Liquidity {
		return a.Liquidity > b.Liquidity
	}
	return a.ID < b.ID
}

// primary compares a and b on the selected key only. It returns -1 when a
// sorts first, 1 when b does and 0 on a tie.
func primary(field domain.SortField, a, b *domain.Market) int {
	switch field {
	case domain.SortVolume24h:
		return desc(a.Volume24h, b.Volume24h)
	case domain.SortVolume:
		return desc(a.VolumeTotal, b.VolumeTotal)
	case domain.SortLiquidity:
		return desc(a.Liquidity, b.Liquidity)
	case domain.SortEnding:
		switch {
		case a.EndDate.Before(b.EndDate):
			return -1
		case b.EndDate.Before(a.EndDate):
			return 1
		}
	case domain.SortChange:
		// Unknown change sorts after any known change, including zero.
		switch {
		case a.Change24h == nil && b.Change24h == nil:
			return 0
		case a.Change24h == nil:
			return 1
		case b.Change24h == nil:
			return -1
		}
		return desc(math.Abs(*a.Change24h), math.Abs(*b.Change24h))
	}
	return 0
}

func desc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}

// ValidSortField reports whether f is a known sort key.
func ValidSortField(f domain.SortField) bool {
	switch f {
	case domain.SortRank, domain.SortVolume24h, domain.SortVolume,
		domain.SortLiquidity, domain.SortEnding, domain.SortChange:
		return true
	}
	return false
}

// Sort orders markets in place. SortRank uses the default chain; any other
// field is compared first with the chain breaking ties.
func Sort(markets []domain.Market, field domain.SortField) {
	sort.SliceStable(markets, func(i, j int) bool {
		a, b := &markets[i], &markets[j]
		if c := primary(field, a, b); c != 0 {
			return c < 0
		}
		return Less(a, b)
	})
}

// Page is one slice of a ranked list.
type Page struct {
	Markets []domain.Market
	// Total is the number of markets before slicing.
	Total int
}

// Paginate returns the 1-based page of size limit. Pages past the end yield
// an empty, non-nil slice. A page below 1 is treated as 1 and a non-positive
// limit returns everything.
func Paginate(markets []domain.Market, page, limit int) Page {
	total := len(markets)
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = total
	}
	start := (page - 1) * limit
	if limit == 0 || start >= total || start < 0 {
		return Page{Markets: []domain.Market{}, Total: total}
	}
	end := start + limit
	if end > total || end < start {
		end = total
	}
	out := make([]domain.Market, end-start)
	copy(out, markets[start:end])
	return Page{Markets: out, Total: total}
}
