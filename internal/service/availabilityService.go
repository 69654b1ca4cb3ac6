package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	repository "github.com/mateolafalce/padelpro/internal/database/postgres"
	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/schedule"
)

type availabilityService struct {
	grid         schedule.Grid
	courts       repository.CourtRepository
	reservations repository.ReservationRepository
}

func NewAvailabilityService(grid schedule.Grid, courts repository.CourtRepository, reservations repository.ReservationRepository) AvailabilityService {
	return &availabilityService{grid: grid, courts: courts, reservations: reservations}
}

// Check reports an occupied slot as Available=false, not as an error. Errors
// are reserved for unknown courts, bad dates and times outside the grid.
func (s *availabilityService) Check(ctx context.Context, courtName, date, timeInput string) (*AvailabilityResult, error) {
	court, err := s.courts.GetByName(ctx, courtName)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, entity.NewError(entity.ErrNotFound, "No se encontró la cancha \"%s\"", courtName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get court: %w", err)
	}

	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	timeRange, err := normalizeTime(s.grid, timeInput)
	if err != nil {
		return nil, err
	}

	_, err = s.reservations.FindActive(ctx, court.ID, day, timeRange)
	switch {
	case err == nil:
		return &AvailabilityResult{
			Available: false,
			Message:   occupiedMessage(courtName, day, timeRange),
			CourtID:   court.ID,
			TimeRange: timeRange,
		}, nil
	case errors.Is(err, entity.ErrNotFound):
		return &AvailabilityResult{
			Available: true,
			Message:   fmt.Sprintf("La cancha %s está disponible el %s a las %s", courtName, day, timeRange),
			CourtID:   court.ID,
			TimeRange: timeRange,
		}, nil
	default:
		return nil, fmt.Errorf("failed to check slot: %w", err)
	}
}

func occupiedMessage(courtName string, day entity.Date, timeRange string) string {
	return fmt.Sprintf("La cancha %s no está disponible el %s a las %s", courtName, day, timeRange)
}

func parseDate(date string) (entity.Date, error) {
	day, err := entity.ParseDate(strings.TrimSpace(date))
	if err != nil {
		return entity.Date{}, entity.NewError(entity.ErrInvalidInput,
			"Fecha \"%s\" no válida. Usá el formato AAAA-MM-DD", date)
	}
	return day, nil
}

func normalizeTime(grid schedule.Grid, input string) (string, error) {
	timeRange, ok := grid.Normalize(input)
	if !ok {
		return "", entity.NewError(entity.ErrInvalidSlot,
			"Horario \"%s\" no válido. Horarios permitidos: %s", input, grid.Joined())
	}
	return timeRange, nil
}
