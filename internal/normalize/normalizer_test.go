package normalize

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/alanyoungcy/marketboard/internal/domain"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testNormalizer() *Normalizer {
	return &Normalizer{Now: func() time.Time { return fixedNow }}
}

func kalshiRecord(fields map[string]any) domain.RawRecord {
	return domain.RawRecord{Source: domain.SourceKalshi, Kind: domain.RecordKindMarket, Fields: fields}
}

func polyRecord(fields map[string]any) domain.RawRecord {
	return domain.RawRecord{Source: domain.SourcePolymarket, Kind: domain.RecordKindMarket, Fields: fields}
}

// decode turns a JSON literal into the map shape adapters hand over.
func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return m
}

func TestNormalize_LastPriceAndStringVolume(t *testing.T) {
	m := testNormalizer().Normalize(kalshiRecord(map[string]any{
		"last_price": 65.0,
		"volume_24h": "1000",
		"title":      "Will X happen?",
	}))

	if m.ProbabilityYes != 65 || m.ProbabilityNo != 35 {
		t.Errorf("probabilities = %d/%d, want 65/35", m.ProbabilityYes, m.ProbabilityNo)
	}
	if m.Volume24h != 1000 {
		t.Errorf("Volume24h = %v, want 1000", m.Volume24h)
	}
	if m.Question != "Will X happen?" {
		t.Errorf("Question = %q", m.Question)
	}
	if m.Status != domain.MarketStatusActive {
		t.Errorf("Status = %q, want active", m.Status)
	}
}

func TestNormalize_NonNumericVolumeIsZero(t *testing.T) {
	m := testNormalizer().Normalize(polyRecord(map[string]any{
		"question":  "Will the volume field parse?",
		"volume":    "abc",
		"liquidity": map[string]any{"nested": true},
	}))
	if m.VolumeTotal != 0 || math.IsNaN(m.VolumeTotal) {
		t.Errorf("VolumeTotal = %v, want 0", m.VolumeTotal)
	}
	if m.Liquidity != 0 {
		t.Errorf("Liquidity = %v, want 0", m.Liquidity)
	}
}

func TestNormalize_MissingEndDateIsSevenDaysOut(t *testing.T) {
	m := testNormalizer().Normalize(polyRecord(map[string]any{"question": "No end date anywhere here"}))
	want := fixedNow.Add(7 * 24 * time.Hour)
	if diff := m.EndDate.Sub(want); diff < -time.Second || diff > time.Second {
		t.Errorf("EndDate = %v, want %v", m.EndDate, want)
	}
}

func TestNormalize_EndDateAliasOrder(t *testing.T) {
	m := testNormalizer().Normalize(kalshiRecord(map[string]any{
		"title":           "Which date wins the chain?",
		"close_time":      "2026-05-01T00:00:00Z",
		"expiration_time": "2026-06-01T00:00:00Z",
		"end_date_iso":    "not a date",
	}))
	want := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	if !m.EndDate.Equal(want) {
		t.Errorf("EndDate = %v, want %v", m.EndDate, want)
	}
}

func TestNormalize_KalshiPriceUnits(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]any
		wantYes int
		wantNo  int
	}{
		{"cents", map[string]any{"last_price": 42.0}, 42, 58},
		{"hundredths of a cent", map[string]any{"last_price": 4200.0}, 42, 58},
		{"dollars string", map[string]any{"last_price_dollars": "0.4200"}, 42, 58},
		{"bid ask midpoint", map[string]any{"yes_bid": 40.0, "yes_ask": 50.0}, 45, 55},
		{"bid only", map[string]any{"yes_bid": 30.0}, 30, 70},
		{"ask only", map[string]any{"yes_ask": "33"}, 33, 67},
		{"last beats midpoint", map[string]any{"last_price": 10.0, "yes_bid": 40.0, "yes_ask": 50.0}, 10, 90},
		{"no signal", map[string]any{}, 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fields["title"] = "Kalshi price unit test market"
			m := testNormalizer().Normalize(kalshiRecord(tt.fields))
			if m.ProbabilityYes != tt.wantYes || m.ProbabilityNo != tt.wantNo {
				t.Errorf("got %d/%d, want %d/%d", m.ProbabilityYes, m.ProbabilityNo, tt.wantYes, tt.wantNo)
			}
		})
	}
}

func TestNormalize_PolymarketOutcomePrices(t *testing.T) {
	fields := decode(t, `{
		"id": 512,
		"question": "Will the bill pass the senate?",
		"outcomes": "[\"No\", \"Yes\"]",
		"outcomePrices": "[\"0.3\", \"0.68\"]",
		"lastTradePrice": 0.5,
		"volume24hr": 1200.5,
		"volumeNum": 90000,
		"liquidityNum": "4000",
		"oneDayPriceChange": -0.025,
		"endDate": "2026-11-03T12:00:00Z",
		"active": true,
		"closed": false
	}`)
	m := testNormalizer().Normalize(polyRecord(fields))

	if m.ID != "512" {
		t.Errorf("ID = %q, want 512", m.ID)
	}
	// Outcome price wins over last trade, and the explicit No price is kept.
	if m.ProbabilityYes != 68 || m.ProbabilityNo != 30 {
		t.Errorf("probabilities = %d/%d, want 68/30", m.ProbabilityYes, m.ProbabilityNo)
	}
	if m.Volume24h != 1200.5 || m.VolumeTotal != 90000 || m.Liquidity != 4000 {
		t.Errorf("volumes = %v/%v/%v", m.Volume24h, m.VolumeTotal, m.Liquidity)
	}
	if m.Change24h == nil || math.Abs(*m.Change24h+2.5) > 1e-9 {
		t.Errorf("Change24h = %v, want -2.5", m.Change24h)
	}
}

func TestNormalize_ChangeUnknownIsNil(t *testing.T) {
	m := testNormalizer().Normalize(kalshiRecord(map[string]any{
		"title":      "Change is unknown without previous price",
		"last_price": 50.0,
	}))
	if m.Change24h != nil {
		t.Errorf("Change24h = %v, want nil", *m.Change24h)
	}

	m = testNormalizer().Normalize(kalshiRecord(map[string]any{
		"title":          "Change is known with previous price",
		"last_price":     50.0,
		"previous_price": 44.0,
	}))
	if m.Change24h == nil || *m.Change24h != 6 {
		t.Errorf("Change24h = %v, want 6", m.Change24h)
	}
}

func TestNormalize_ProbabilitiesClamped(t *testing.T) {
	m := testNormalizer().Normalize(polyRecord(map[string]any{
		"question":      "Out of range prices clamp",
		"outcomes":      []any{"Yes", "No"},
		"outcomePrices": []any{"140", "-3"},
	}))
	if m.ProbabilityYes < 0 || m.ProbabilityYes > 100 || m.ProbabilityNo < 0 || m.ProbabilityNo > 100 {
		t.Errorf("probabilities out of range: %d/%d", m.ProbabilityYes, m.ProbabilityNo)
	}
}

func TestNormalize_Status(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		want   domain.MarketStatus
	}{
		{"settled", map[string]any{"status": "settled"}, domain.MarketStatusResolved},
		{"kalshi result", map[string]any{"status": "closed", "result": "yes"}, domain.MarketStatusResolved},
		{"resolved beats closed", map[string]any{"resolved": true, "closed": true}, domain.MarketStatusResolved},
		{"cancelled", map[string]any{"status": "cancelled"}, domain.MarketStatusClosed},
		{"closed beats active", map[string]any{"active": true, "closed": true}, domain.MarketStatusClosed},
		{"open", map[string]any{"status": "open"}, domain.MarketStatusActive},
		{"accepting orders", map[string]any{"acceptingOrders": "true"}, domain.MarketStatusActive},
		{"nothing", map[string]any{}, domain.MarketStatusActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := status(tt.fields); got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeBatch_DropsShortQuestions(t *testing.T) {
	recs := []domain.RawRecord{
		kalshiRecord(map[string]any{"ticker": "A", "title": "Too short"}),
		kalshiRecord(map[string]any{"ticker": "B", "title": "Long enough to show on the board"}),
		polyRecord(map[string]any{"id": "C"}),
		polyRecord(map[string]any{"id": "D", "question": "Will this one stay in order?"}),
	}
	got := testNormalizer().NormalizeBatch(recs)
	if len(got) != 2 || got[0].ID != "B" || got[1].ID != "D" {
		t.Fatalf("NormalizeBatch ids = %v, want [B D]", ids(got))
	}
}

func TestNormalize_NilFieldsDoesNotPanic(t *testing.T) {
	m := testNormalizer().Normalize(domain.RawRecord{Source: domain.SourceKalshi})
	if m.ProbabilityNo != 100 || m.Status != domain.MarketStatusActive {
		t.Errorf("unexpected defaults: %+v", m)
	}
}

func ids(ms []domain.Market) []string {
	out := make([]string, len(ms))
	for i := range ms {
		out[i] = ms[i].ID
	}
	return out
}
