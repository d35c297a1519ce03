package ledger

import (
	"strings"

	"github.com/rcr1994/dcabot/internal/domain"
)

// quoteSuffixes are the quote-currency notations recognized at the end of
// a pair. Longer legacy forms come first so "ZEUR" wins over "EUR".
var quoteSuffixes = []string{"ZEUR", "ZUSD", "XXBT", "EUR", "USD", "XBT"}

// assetAliases maps Kraken's legacy asset codes to their common symbols.
var assetAliases = map[string]string{
	"XBT": "BTC",
	"XDG": "DOGE",
}

// BaseSymbol extracts the common base-asset symbol from a Kraken pair:
// the quote suffix is stripped, legacy-listed assets lose their one
// character class prefix (XXBT -> XBT) and legacy codes are mapped to
// their common symbol (XBT -> BTC). "XXBTZEUR" yields "BTC", "ADAEUR"
// yields "ADA".
func BaseSymbol(pair domain.Pair) string {
	base := pair.String()
	for _, suffix := range quoteSuffixes {
		if strings.HasSuffix(base, suffix) && len(base) > len(suffix) {
			base = strings.TrimSuffix(base, suffix)
			break
		}
	}
	if len(base) == 4 && (base[0] == 'X' || base[0] == 'Z') {
		base = base[1:]
	}
	if alias, ok := assetAliases[base]; ok {
		return alias
	}
	return base
}
