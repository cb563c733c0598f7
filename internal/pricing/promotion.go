package pricing

import (
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// ActivePromotions filters promotions down to those effective at now.
func ActivePromotions(all []model.Promotion, now time.Time) []model.Promotion {
	active := make([]model.Promotion, 0, len(all))
	for _, p := range all {
		if p.EffectiveAt(now) {
			active = append(active, p)
		}
	}
	return active
}

// BundleFor finds an effective bundle promotion by id.
func BundleFor(active []model.Promotion, id uint64) (model.Promotion, bool) {
	for _, p := range active {
		if p.ID == id && p.Type == model.PromotionBundle {
			return p, true
		}
	}
	return model.Promotion{}, false
}
