package service

import (
	"context"
	"fmt"

	repository "github.com/mateolafalce/padelpro/internal/database/postgres"
	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/schedule"
)

type catalogService struct {
	grid   schedule.Grid
	courts repository.CourtRepository
	slots  repository.SlotRepository
}

func NewCatalogService(grid schedule.Grid, courts repository.CourtRepository, slots repository.SlotRepository) CatalogService {
	return &catalogService{grid: grid, courts: courts, slots: slots}
}

func (s *catalogService) Grid() schedule.Grid { return s.grid }

// ListAllSlots is ordered by weekday, Monday first, then by time range.
func (s *catalogService) ListAllSlots(ctx context.Context) ([]*entity.Slot, error) {
	slots, err := s.slots.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return slots, nil
}

func (s *catalogService) SlotsForCourt(ctx context.Context, courtID int64) ([]*entity.Slot, error) {
	slots, err := s.slots.GetByCourt(ctx, courtID)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots of court %d: %w", courtID, err)
	}
	return slots, nil
}

func (s *catalogService) CourtsWithSlots(ctx context.Context) ([]*entity.CourtWithSlots, error) {
	courts, err := s.courts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts: %w", err)
	}

	out := make([]*entity.CourtWithSlots, 0, len(courts))
	for _, court := range courts {
		slots, err := s.SlotsForCourt(ctx, court.ID)
		if err != nil {
			return nil, err
		}
		withSlots := &entity.CourtWithSlots{Court: *court, Slots: make([]entity.Slot, 0, len(slots))}
		for _, slot := range slots {
			withSlots.Slots = append(withSlots.Slots, *slot)
		}
		out = append(out, withSlots)
	}
	return out, nil
}
