package filter

// DefaultSportsTickerPrefixes lists Kalshi series prefixes and Gamma slug
// prefixes used for sports markets.
func DefaultSportsTickerPrefixes() []string {
	return []string{
		"KXNFL", "KXNBA", "KXWNBA", "KXMLB", "KXNHL", "KXNCAAF", "KXNCAAB",
		"KXMLS", "KXEPL", "KXUCL", "KXUFC", "KXPGA", "KXF1", "KXATP", "KXWTA",
		"KXMVE", "KXBOXING", "KXNASCAR", "KXSB",
		"nfl-", "nba-", "mlb-", "nhl-", "epl-", "ucl-", "cfb-", "cbb-", "ufc-",
	}
}

// DefaultSportsKeywords covers sport names, leagues, stat terms and a handful
// of player surnames that show up in single-player props.
func DefaultSportsKeywords() []string {
	return []string{
		// sports and leagues
		"nfl", "nba", "wnba", "mlb", "nhl", "ncaa", "mls", "premier league",
		"champions league", "la liga", "serie a", "bundesliga", "super bowl",
		"world series", "stanley cup", "march madness", "world cup", "ufc",
		"formula 1", "grand prix", "wimbledon", "us open", "pga", "masters tournament",
		"football", "basketball", "baseball", "hockey", "soccer", "tennis", "golf",
		"boxing", "cricket", "rugby", "nascar",
		// stat terminology
		"touchdown", "rushing yards", "passing yards", "receiving yards",
		"home run", "rebounds", "assists", "three-pointers", "strikeouts",
		"hat trick", "over/under", "point spread", "mvp",
		// teams that name markets directly
		"lakers", "celtics", "warriors", "yankees", "dodgers", "chiefs", "eagles",
		"cowboys", "49ers", "real madrid", "barcelona", "manchester",
		// players
		"mahomes", "lebron", "curry", "ohtani", "messi", "ronaldo", "djokovic",
	}
}
