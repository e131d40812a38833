package enums

import "fmt"

// StockMode selects which ledger operation a stock adjustment performs.
type StockMode string

const (
	StockModeReserve StockMode = "reserve"
	StockModeCommit  StockMode = "commit"
	StockModeRelease StockMode = "release"
	StockModeSet     StockMode = "set"
)

var validStockModes = []StockMode{
	StockModeReserve,
	StockModeCommit,
	StockModeRelease,
	StockModeSet,
}

// String implements fmt.Stringer.
func (s StockMode) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockMode.
func (s StockMode) IsValid() bool {
	for _, candidate := range validStockModes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockMode converts raw input into a StockMode.
func ParseStockMode(value string) (StockMode, error) {
	for _, candidate := range validStockModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock mode %q", value)
}
