// Package display derives presentation values from normalized markets. All
// functions are pure and take "now" explicitly where time matters.
package display

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/alanyoungcy/marketboard/internal/domain"
)

// Remaining is the whole-unit time left before a market closes.
type Remaining struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// Closed reports whether no time remains.
func (r Remaining) Closed() bool {
	return r == Remaining{}
}

// Countdown returns the time from now until end. A non-positive difference
// yields the zero Remaining.
func Countdown(end, now time.Time) Remaining {
	d := end.Sub(now)
	if d <= 0 {
		return Remaining{}
	}
	return Remaining{
		Days:    int(d / (24 * time.Hour)),
		Hours:   int(d % (24 * time.Hour) / time.Hour),
		Minutes: int(d % time.Hour / time.Minute),
	}
}

// FormatCountdown renders the two most significant units, e.g. "2d 5h",
// "5h 12m" or "12m". The zero value renders as "Closed".
func FormatCountdown(r Remaining) string {
	switch {
	case r.Closed():
		return "Closed"
	case r.Days > 0:
		return fmt.Sprintf("%dd %dh", r.Days, r.Hours)
	case r.Hours > 0:
		return fmt.Sprintf("%dh %dm", r.Hours, r.Minutes)
	default:
		return fmt.Sprintf("%dm", r.Minutes)
	}
}

// Probabilities returns the yes/no pair shown for m.
func Probabilities(m *domain.Market) (yes, no int) {
	return m.ProbabilityYes, m.ProbabilityNo
}

// FormatProbability renders an integer percentage, e.g. "65%".
func FormatProbability(p int) string {
	return fmt.Sprintf("%d%%", p)
}

// FormatCurrency abbreviates large dollar amounts: $1.2M, $45.6K, $9,876.
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	// Buckets are chosen on the rounded value so 999,999 reads $1.0M, not $1000.0K.
	millions := math.Round(v/100_000) / 10
	thousands := math.Round(v/100) / 10
	dollars := math.Round(v)
	switch {
	case thousands >= 1_000:
		return fmt.Sprintf("%s$%.1fM", sign, millions)
	case dollars >= 10_000:
		return fmt.Sprintf("%s$%.1fK", sign, thousands)
	default:
		return sign + "$" + humanize.Comma(int64(dollars))
	}
}

// FormatPercentChange renders a 24h change. Magnitudes below one are shown to
// three decimals without a percent sign; larger ones to one decimal with it.
// Non-negative values carry an explicit "+".
func FormatPercentChange(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	var s string
	if math.Abs(v) < 1 {
		s = fmt.Sprintf("%.3f", v)
	} else {
		s = fmt.Sprintf("%.1f%%", v)
	}
	if s == "-0.000" {
		s = "0.000"
	}
	if !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s
}

// FormatDate renders a close date as "Jan 2, 2006" in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format("Jan 2, 2006")
}

// Block is the set of derived values attached to a market in API responses.
type Block struct {
	Countdown   Remaining `json:"countdown"`
	EndsIn      string    `json:"endsIn"`
	Yes         string    `json:"yes"`
	No          string    `json:"no"`
	Volume24h   string    `json:"volume24h"`
	VolumeTotal string    `json:"volumeTotal"`
	Liquidity   string    `json:"liquidity"`
	Change24h   string    `json:"change24h,omitempty"`
	EndDate     string    `json:"endDate"`
}

// For computes the display block for m at now.
func For(m *domain.Market, now time.Time) Block {
	yes, no := Probabilities(m)
	left := Countdown(m.EndDate, now)
	b := Block{
		Countdown:   left,
		EndsIn:      FormatCountdown(left),
		Yes:         FormatProbability(yes),
		No:          FormatProbability(no),
		Volume24h:   FormatCurrency(m.Volume24h),
		VolumeTotal: FormatCurrency(m.VolumeTotal),
		Liquidity:   FormatCurrency(m.Liquidity),
		EndDate:     FormatDate(m.EndDate),
	}
	if m.Change24h != nil {
		b.Change24h = FormatPercentChange(*m.Change24h)
	}
	return b
}
