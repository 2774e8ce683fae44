package services

import "strings"

// The candidate pool must contain only non-market series (rates, spreads,
// job postings, economic indicators). Anything that is directly the price of
// a traded security, commodity, index, or crypto is filtered out before
// correlation, in addition to the daily category-derived exclusion set.

var excludedKeywords = []string{
	// Stock/security indexes and volatility
	"vix", "volatility index", "nikkei", "nasdaq", "dow jones",
	"russell 2000", "s&p 500", "s&p500",
	// Crypto
	"bitcoin", "ethereum", "coinbase", "litecoin", "bitcoin cash",
	"crypto",
	// Commodities - direct prices
	"gold price", "silver price", "copper price", "oil price",
	"platinum price", "palladium price",
	"wheat price", "corn price", "soybean price",
	"lumber price", "cotton price", "coffee price",
	"cocoa price", "sugar price", "cattle price",
	"natural gas price", "gasoline price", "diesel price",
	"wti", "brent",
	// Commodity indexes
	"commodity index",
	// Direct equity/security prices
	"stock price", "share price", "equity price",
	"total return index value",
}

var excludedIDs = map[string]bool{
	// VIX and variants
	"VIXCLS": true, "VXNCLS": true, "VXDCLS": true, "VXVCLS": true, "RVXCLS": true,
	"VXGSCLS": true, "VXAPLCLS": true, "VXAZNCLS": true, "VXGOGCLS": true, "VXIBMCLS": true,
	"VXSLVCLS": true, "VXEWZCLS": true, "VXFXICLS": true, "VXEEMCLS": true, "VXGDXCLS": true,
	"VXUSCLS": true,
	// Nikkei
	"NIKKEI225": true,
	// Crypto
	"CBBTCUSD": true, "CBETHUSD": true, "CBLTCUSD": true, "CBBCHUSD": true,
	// Gasoline/energy spot prices
	"DGASNYH": true, "DGASRGCG": true, "DCOILWTICO": true, "DCOILBRENTEU": true,
	"DHHNGSP": true, "DPROPANEMBTX": true,
	// Gold/Silver/Commodity spot prices
	"GOLDAMGBD228NLBM": true, "GOLDPMGBD228NLBM": true,
	"SLVPRUSD": true,
	// Total return indexes (these are securities)
	"BAMLHYH0A3CMTRIV": true, "BAMLHYH0A0HYM2TRIV": true,
	"BAMLCC0A1AAATRIV": true, "BAMLCC0A0CMTRIV": true,
}

// isMarketSeries reports whether a series is itself a traded security,
// commodity, or index and therefore never a valid candidate.
func isMarketSeries(id, title string) bool {
	if excludedIDs[id] {
		return true
	}
	lower := strings.ToLower(title)
	for _, kw := range excludedKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
