// Package domain defines core data structures used throughout the bot.
package domain

// Pair is a Kraken trading pair in the exchange's own notation,
// e.g. "XXBTZEUR" or "ADAEUR".
type Pair string

// String returns the string representation.
func (p Pair) String() string {
	return string(p)
}
