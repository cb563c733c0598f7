package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/pricing"
)

// Menu lists the catalog, unavailable items included so the till can show
// them greyed out.
func (s *Service) Menu(ctx context.Context) ([]model.MenuItem, error) {
	items, err := s.catalog.ListMenuItems(ctx)
	if err != nil {
		return nil, s.catalogError("list menu", err)
	}
	return items, nil
}

// ActivePromotions lists the promotions in effect right now.
func (s *Service) ActivePromotions(ctx context.Context) ([]model.Promotion, error) {
	now := s.now()
	promos, err := s.catalog.ListActivePromotions(ctx, now)
	if err != nil {
		return nil, s.catalogError("list promotions", err)
	}
	return pricing.ActivePromotions(promos, now), nil
}

func (s *Service) catalogError(op string, err error) error {
	s.logger.Error("catalog failure", zap.String("op", op), zap.Error(err))
	return &Error{Kind: StorageUnavailable, Message: "catalog unavailable", Err: err}
}
