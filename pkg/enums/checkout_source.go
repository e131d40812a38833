package enums

import "fmt"

// CheckoutSource records where a checkout draft originated.
type CheckoutSource string

const (
	CheckoutSourceCart   CheckoutSource = "cart"
	CheckoutSourceBuyNow CheckoutSource = "buy_now"
)

var validCheckoutSources = []CheckoutSource{
	CheckoutSourceCart,
	CheckoutSourceBuyNow,
}

// String implements fmt.Stringer.
func (c CheckoutSource) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutSource.
func (c CheckoutSource) IsValid() bool {
	for _, candidate := range validCheckoutSources {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCheckoutSource converts raw input into a CheckoutSource.
func ParseCheckoutSource(value string) (CheckoutSource, error) {
	for _, candidate := range validCheckoutSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout source %q", value)
}
