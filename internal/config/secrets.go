package config

// RedactedConfig returns a copy of cfg with sensitive fields replaced by the
// redaction placeholder "***". Use this when logging or printing the active
// configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	// Kalshi
	redact(&out.Kalshi.APIKeyID)
	redact(&out.Kalshi.PrivateKey)

	// Server
	redact(&out.Server.APIKey)

	// Redis
	redact(&out.Redis.Password)

	// Copy slices so callers cannot mutate the original through the redacted
	// copy.
	if cfg.Server.CORSOrigins != nil {
		out.Server.CORSOrigins = append([]string(nil), cfg.Server.CORSOrigins...)
	}
	if cfg.Feed.Categories != nil {
		out.Feed.Categories = make([]CategoryRule, len(cfg.Feed.Categories))
		for i, r := range cfg.Feed.Categories {
			out.Feed.Categories[i] = CategoryRule{Label: r.Label, Keywords: append([]string(nil), r.Keywords...)}
		}
	}
	out.Feed.Sports.TickerPrefixes = append([]string(nil), cfg.Feed.Sports.TickerPrefixes...)
	out.Feed.Sports.Keywords = append([]string(nil), cfg.Feed.Sports.Keywords...)

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
