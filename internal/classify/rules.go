package classify

// DefaultRules is the built-in category list. Order matters: "Elections" sits
// above "Politics" so election questions that also mention a president land in
// Elections.
func DefaultRules() []Rule {
	return []Rule{
		{Label: "Elections", Keywords: []string{
			"election", "ballot", "primary", "nominee", "nomination", "electoral",
			"midterm", "runoff", "caucus", "popular vote", "win the seat",
		}},
		{Label: "Politics", Keywords: []string{
			"president", "congress", "senate", "governor", "mayor", "legislation",
			"supreme court", "republican", "democrat", "white house", "parliament",
			"prime minister", "cabinet", "impeach", "executive order", "tariff",
			"policy", "trump", "shutdown",
		}},
		{Label: "Crypto", Keywords: []string{
			"bitcoin", "btc", "ethereum", "crypto", "solana", "dogecoin",
			"stablecoin", "blockchain", "xrp", "memecoin",
		}},
		{Label: "Economy", Keywords: []string{
			"fed ", "federal reserve", "interest rate", "rate cut", "rate hike",
			"inflation", "gdp", "recession", "unemployment", "jobs report", "cpi",
			"treasury", "gas price",
		}},
		{Label: "Finance", Keywords: []string{
			"stock", "nasdaq", "s&p", "dow jones", "ipo", "earnings", "market cap",
			"shares", "merger", "acquisition",
		}},
		{Label: "Tech", Keywords: []string{
			"openai", "chatgpt", "gpt-", "artificial intelligence", " ai ", "apple",
			"google", "microsoft", "nvidia", "tesla", "spacex", "iphone",
			"semiconductor",
		}},
		{Label: "Geopolitics", Keywords: []string{
			"ukraine", "russia", "israel", "gaza", "iran", "china", "taiwan",
			"nato", "ceasefire", "invasion", "military", "sanctions", "missile",
		}},
		{Label: "Sports", Keywords: []string{
			"nba", "nfl", "mlb", "nhl", "super bowl", "world cup", "championship",
			"playoff", "premier league", "tennis", "golf", "ufc", "formula 1",
			"olympic",
		}},
		{Label: "Culture", Keywords: []string{
			"movie", "film", "oscar", "grammy", "emmy", "album", "box office",
			"netflix", "celebrity", "taylor swift", "billboard", "song",
		}},
		{Label: "Science", Keywords: []string{
			"climate", "temperature", "hurricane", "earthquake", "nasa", "vaccine",
			"pandemic", "covid", "measles",
		}},
	}
}
