package domain

// Source identifies the upstream a record came from.
type Source string

const (
	SourceKalshi     Source = "kalshi"
	SourcePolymarket Source = "polymarket"
)

// RecordKind distinguishes the shapes a single source can return.
type RecordKind string

const (
	// RecordKindMarket is a single binary market.
	RecordKindMarket RecordKind = "market"
	// RecordKindEvent groups several binary markets under one title.
	RecordKindEvent RecordKind = "event"
)

// RawRecord is an untyped upstream payload tagged with the shape it came in.
// Fields holds the decoded JSON object as-is; nothing about it is trusted.
type RawRecord struct {
	Source Source
	Kind   RecordKind
	Fields map[string]any
}

// RawPage is one page of raw records plus the opaque cursor for the next page.
// Cursor is empty when the source has no more pages.
type RawPage struct {
	Records []RawRecord
	Cursor  string
}
