package catalog

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	pkgerrors "github.com/noormart/noormart-backend/pkg/errors"
)

const skuGenerationAttempts = 5

type skuChecker interface {
	SKUExists(ctx context.Context, sku string) (bool, error)
}

// generateSKU derives a human-readable SKU from product attributes with
// a random numeric suffix, retrying on collision.
func generateSKU(ctx context.Context, repo skuChecker, productName, color, size string) (string, error) {
	base := skuToken(productName, 5) + "-" + skuToken(color, 3) + "-" + skuToken(size, 4)

	for i := 0; i < skuGenerationAttempts; i++ {
		sku := fmt.Sprintf("%s-%d", base, 100+rand.Intn(900))
		exists, err := repo.SKUExists(ctx, sku)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sku uniqueness")
		}
		if !exists {
			return sku, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, "sku generation failed after retries")
}

// skuToken strips non-alphanumerics, uppercases, and truncates.
func skuToken(value string, max int) string {
	var b strings.Builder
	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	token := strings.ToUpper(b.String())
	if len(token) > max {
		token = token[:max]
	}
	if token == "" {
		token = "X"
	}
	return token
}
