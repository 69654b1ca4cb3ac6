package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	repository "github.com/mateolafalce/padelpro/internal/database/postgres"
	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/schedule"
	"github.com/sirupsen/logrus"
)

type blockService struct {
	grid         schedule.Grid
	courts       repository.CourtRepository
	slots        repository.SlotRepository
	clients      repository.ClientRepository
	states       repository.StateRepository
	reservations repository.ReservationRepository
	events       EventPublisher
	now          func() time.Time
}

func NewBlockService(grid schedule.Grid, repo *repository.Repository, events EventPublisher) BlockService {
	return &blockService{
		grid:         grid,
		courts:       repo.Courts,
		slots:        repo.Slots,
		clients:      repo.Clients,
		states:       repo.States,
		reservations: repo.Reservations,
		events:       events,
		now:          time.Now,
	}
}

// Toggle blocks a free slot or unblocks a blocked one. A slot held by a real
// reservation is never touched.
func (s *blockService) Toggle(ctx context.Context, req *ToggleRequest) (*ToggleResult, error) {
	day, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	timeRange, err := normalizeTime(s.grid, req.Time)
	if err != nil {
		return nil, err
	}

	court, err := s.courts.GetByID(ctx, req.CourtID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, entity.NewError(entity.ErrNotFound, "No se encontró la cancha con ID %d", req.CourtID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get court: %w", err)
	}

	existing, err := s.reservations.FindActive(ctx, court.ID, day, timeRange)
	switch {
	case err == nil:
		if existing.State != entity.StateBlocked {
			return nil, entity.NewError(entity.ErrConflict, "El horario ya está ocupado por una reserva real")
		}
		return s.unblock(ctx, existing)
	case errors.Is(err, entity.ErrNotFound):
		return s.block(ctx, court, day, timeRange)
	default:
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}
}

func (s *blockService) unblock(ctx context.Context, blocked *entity.ReservationDetails) (*ToggleResult, error) {
	cancelled, err := requireState(ctx, s.states, entity.StateCancelled)
	if err != nil {
		return nil, err
	}
	err = s.reservations.UpdateState(ctx, blocked.ID, cancelled.ID)
	if errors.Is(err, repository.ErrStateUnchanged) {
		return nil, entity.NewError(entity.ErrConflict, "El horario ya fue desbloqueado")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unblock slot: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"reservation_id": blocked.ID,
		"court_id":       blocked.CourtID,
		"date":           blocked.Date.String(),
		"time":           blocked.TimeRange,
	}).Info("Slot unblocked")

	s.emit(ctx, entity.EventSlotUnblocked, &blocked.Reservation, blocked.CourtName)
	return &ToggleResult{Action: ActionUnblocked, ReservationID: blocked.ID}, nil
}

func (s *blockService) block(ctx context.Context, court *entity.Court, day entity.Date, timeRange string) (*ToggleResult, error) {
	blocked, err := requireState(ctx, s.states, entity.StateBlocked)
	if err != nil {
		return nil, err
	}

	client, err := s.adminClient(ctx)
	if err != nil {
		return nil, err
	}

	reservation := &entity.Reservation{
		Date:      day,
		TimeRange: timeRange,
		CourtID:   court.ID,
		ClientID:  client.ID,
		StateID:   blocked.ID,
	}
	if err := s.reservations.Create(ctx, reservation); err != nil {
		if errors.Is(err, entity.ErrConflict) {
			return nil, entity.NewError(entity.ErrConflict, "El horario ya está ocupado por una reserva real")
		}
		return nil, fmt.Errorf("failed to block slot: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"reservation_id": reservation.ID,
		"court_id":       court.ID,
		"date":           day.String(),
		"time":           timeRange,
	}).Info("Slot blocked")

	s.emit(ctx, entity.EventSlotBlocked, reservation, court.Name)
	return &ToggleResult{Action: ActionBlocked, ReservationID: reservation.ID}, nil
}

// adminClient prefers a client named Admin and falls back to the generic one.
func (s *blockService) adminClient(ctx context.Context) (*entity.Client, error) {
	client, err := s.clients.GetByFirstName(ctx, entity.AdminFirstName)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return nil, fmt.Errorf("failed to get admin client: %w", err)
	}
	return resolveGenericClient(ctx, s.clients)
}

// WeeklyGrid lists, for the weekday of date, every slot crossed with every
// court and the state of the reservation holding it.
func (s *blockService) WeeklyGrid(ctx context.Context, date string) ([]*GridRow, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	slots, err := s.slots.GetByWeekday(ctx, schedule.WeekdayName(day.Time))
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	courts, err := s.courts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts: %w", err)
	}
	active, err := s.reservations.ListActiveByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	type cellKey struct {
		courtID   int64
		timeRange string
	}
	states := make(map[cellKey]entity.ReservationState, len(active))
	for _, r := range active {
		states[cellKey{r.CourtID, r.TimeRange}] = r.State
	}

	rows := make([]*GridRow, 0, len(slots))
	for _, slot := range slots {
		row := &GridRow{TimeRange: slot.TimeRange, Courts: make([]GridCell, 0, len(courts))}
		for _, court := range courts {
			state := GridAvailable
			if st, ok := states[cellKey{court.ID, slot.TimeRange}]; ok && st.Occupies() {
				state = string(st)
			}
			row.Courts = append(row.Courts, GridCell{CourtID: court.ID, CourtName: court.Name, State: state})
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *blockService) emit(ctx context.Context, kind entity.ReservationEventType, r *entity.Reservation, court string) {
	publishEvent(ctx, s.events, &entity.ReservationEvent{
		ID:            uuid.NewString(),
		Type:          kind,
		ReservationID: r.ID,
		Court:         court,
		Date:          r.Date.String(),
		TimeRange:     r.TimeRange,
		At:            s.now(),
	})
}
