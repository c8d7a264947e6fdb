package songmatch

// DefaultAliases is the hand-maintained nickname table for the catalog the
// show archive covers. Canonical name on the left, known nicknames and
// abbreviations on the right.
func DefaultAliases() map[string][]string {
	return map[string][]string{
		"goin' down the road feeling bad": {"gdtrfb", "goin down the road"},
		"not fade away":                   {"nfa"},
		"turn on your lovelight":          {"lovelight"},
		"playing in the band":             {"playin' in the band", "playin"},
		"uncle john's band":               {"ujb"},
		"china cat sunflower":             {"china cat"},
		"i know you rider":                {"rider"},
		"morning dew":                     {"the morning dew"},
		"estimated prophet":               {"estimated"},
		"eyes of the world":               {"eyes"},
		"sugar magnolia":                  {"sugar mags", "sunshine daydream"},
		"st. stephen":                     {"saint stephen", "st stephen"},
		"friend of the devil":             {"fotd"},
		"the other one":                   {"that's it for the other one"},
		"wharf rat":                       {"wharf"},
		"terrapin station":                {"terrapin"},
		"scarlet begonias":                {"scarlet"},
		"fire on the mountain":            {"fire", "fotm"},
	}
}

// NewDefaultMatcher builds a matcher over DefaultAliases.
func NewDefaultMatcher() *Matcher {
	return NewMatcher(DefaultAliases())
}
