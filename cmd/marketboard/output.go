package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/alanyoungcy/marketboard/internal/display"
	"github.com/alanyoungcy/marketboard/internal/domain"
)

type marketRow struct {
	domain.Market
	Display display.Block `json:"display"`
}

type fetchOutput struct {
	Markets []marketRow `json:"markets"`
	Cursor  string      `json:"cursor,omitempty"`
	Total   int         `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

func writeJSON(w io.Writer, res domain.FeedResult, now time.Time) error {
	out := fetchOutput{
		Markets: make([]marketRow, 0, len(res.Markets)),
		Cursor:  res.Cursor,
		Total:   res.Total,
		Page:    res.Page,
		Limit:   res.Limit,
	}
	for i := range res.Markets {
		out.Markets = append(out.Markets, marketRow{Market: res.Markets[i], Display: display.For(&res.Markets[i], now)})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// maxQuestion truncates long questions in table output.
const maxQuestion = 60

func writeTable(w io.Writer, res domain.FeedResult, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tCATEGORY\tYES\tNO\t24H VOL\tCHANGE\tENDS IN\tQUESTION")
	for i := range res.Markets {
		m := &res.Markets[i]
		b := display.For(m, now)
		change := b.Change24h
		if change == "" {
			change = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			m.Source, m.Category, b.Yes, b.No, b.Volume24h, change, b.EndsIn, truncate(m.Question, maxQuestion))
	}
	fmt.Fprintf(tw, "\npage %d, %d of %d markets", res.Page, len(res.Markets), res.Total)
	if res.Cursor != "" {
		fmt.Fprintf(tw, ", next cursor %q", res.Cursor)
	}
	fmt.Fprintln(tw)
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
