package kraken

import (
	"fmt"
	"strings"
)

// ExchangeError is a non-empty error list in Kraken's response envelope.
// The API reports it with HTTP 200, so it is detected on the payload,
// never on the status code.
type ExchangeError struct {
	Errors []string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("kraken api error: %s", strings.Join(e.Errors, "; "))
}
