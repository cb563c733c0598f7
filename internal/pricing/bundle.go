package pricing

import (
	"strings"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// BundleSavings is what a customer saves buying lines worth regularCents as
// a bundle sold at bundlePriceCents.  A bundle priced above its parts saves
// nothing.
func BundleSavings(regularCents, bundlePriceCents int64) int64 {
	if regularCents <= bundlePriceCents {
		return 0
	}
	return regularCents - bundlePriceCents
}

// OrderBundleSavings derives the bundle discount of an order from scratch.
// Each bundle instance is priced from the lines that still carry its
// instance key; an instance that lost a line earns nothing.  The reason
// lists the names of the bundles that saved money, comma-joined in bundle
// order.
func OrderBundleSavings(items []model.OrderItem, bundles []model.OrderBundle) (int64, string) {
	if len(bundles) == 0 {
		return 0, ""
	}
	regular := make(map[string]int64, len(bundles))
	lines := make(map[string]int, len(bundles))
	for _, it := range items {
		if it.BundleInstance == "" {
			continue
		}
		regular[it.BundleInstance] += LineTotal(it.PriceCents, it.Quantity)
		lines[it.BundleInstance]++
	}
	var total int64
	var names []string
	for _, b := range bundles {
		if lines[b.Instance] != b.ItemCount {
			continue
		}
		s := BundleSavings(regular[b.Instance], b.BundlePriceCents)
		if s == 0 {
			continue
		}
		total += s
		names = append(names, b.Name)
	}
	return total, strings.Join(names, ", ")
}
