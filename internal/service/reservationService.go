package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	repository "github.com/mateolafalce/padelpro/internal/database/postgres"
	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/schedule"
	"github.com/sirupsen/logrus"
)

type reservationService struct {
	grid         schedule.Grid
	availability AvailabilityService
	courts       repository.CourtRepository
	clients      repository.ClientRepository
	states       repository.StateRepository
	reservations repository.ReservationRepository
	events       EventPublisher
	now          func() time.Time
}

func NewReservationService(
	grid schedule.Grid,
	availability AvailabilityService,
	repo *repository.Repository,
	events EventPublisher,
) ReservationService {
	return &reservationService{
		grid:         grid,
		availability: availability,
		courts:       repo.Courts,
		clients:      repo.Clients,
		states:       repo.States,
		reservations: repo.Reservations,
		events:       events,
		now:          time.Now,
	}
}

// Create books a slot at the court's current price. The availability check is
// a fast path only: the store rejects a second active reservation for the same
// slot and that rejection is reported exactly like an occupied slot.
func (s *reservationService) Create(ctx context.Context, req *CreateReservationRequest) (*BookingResult, error) {
	check, err := s.availability.Check(ctx, req.CourtName, req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	day, _ := entity.ParseDate(strings.TrimSpace(req.Date))
	if !check.Available {
		return nil, entity.NewError(entity.ErrConflict, "%s", check.Message)
	}

	court, err := s.courts.GetByID(ctx, check.CourtID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, entity.NewError(entity.ErrNotFound, "Cancha no encontrada")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get court: %w", err)
	}

	client, err := s.resolveClient(ctx, strings.TrimSpace(req.Phone), strings.TrimSpace(req.ClientName))
	if err != nil {
		return nil, err
	}

	state, err := requireState(ctx, s.states, entity.StateStarted)
	if err != nil {
		return nil, err
	}

	reservation := &entity.Reservation{
		Date:      day,
		TimeRange: check.TimeRange,
		CourtID:   court.ID,
		ClientID:  client.ID,
		StateID:   state.ID,
		Amount:    court.Price,
	}
	if err := s.reservations.Create(ctx, reservation); err != nil {
		if errors.Is(err, entity.ErrConflict) {
			return nil, entity.NewError(entity.ErrConflict, "%s", occupiedMessage(req.CourtName, day, check.TimeRange))
		}
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"reservation_id": reservation.ID,
		"court":          court.Name,
		"date":           day.String(),
		"time":           reservation.TimeRange,
		"client_id":      client.ID,
	}).Info("Reservation created")

	s.emit(ctx, entity.EventReservationCreated, reservation, court.Name, client.Phone)

	return &BookingResult{
		ReservationID: reservation.ID,
		ClientID:      client.ID,
		TimeRange:     reservation.TimeRange,
		Amount:        reservation.Amount,
		Message: fmt.Sprintf("¡Reserva confirmada! Cancha %s el %s a las %s. Monto: $%s",
			req.CourtName, day, reservation.TimeRange, FormatAmount(court.Price)),
	}, nil
}

// resolveClient finds the client a booking belongs to.
//
// With a phone the client is looked up by phone and created on first booking,
// named after clientName or, failing that, the phone itself. Clients still
// carrying the legacy "Cliente WhatsApp" placeholder are renamed to their
// phone: early chat flows stored that name and listings should show the number
// instead. Without a phone every booking goes to the shared generic client.
func (s *reservationService) resolveClient(ctx context.Context, phone, clientName string) (*entity.Client, error) {
	if phone == "" {
		return resolveGenericClient(ctx, s.clients)
	}

	client, err := s.clients.GetByPhone(ctx, phone)
	if err == nil {
		if client.FirstName == entity.WhatsAppPlaceholderName {
			client.FirstName = phone
			client.LastName = ""
			if err := s.clients.Update(ctx, client); err != nil {
				return nil, fmt.Errorf("failed to rename placeholder client: %w", err)
			}
			logrus.WithField("client_id", client.ID).Info("Renamed placeholder client to its phone")
		}
		return client, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	client = &entity.Client{FirstName: phone, Phone: phone}
	if clientName != "" {
		client.FirstName = clientName
		client.LastName = entity.NamedChatLastName
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

func resolveGenericClient(ctx context.Context, clients repository.ClientRepository) (*entity.Client, error) {
	client, err := clients.GetByName(ctx, entity.GenericFirstName, entity.GenericLastName)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return nil, fmt.Errorf("failed to get generic client: %w", err)
	}

	client = &entity.Client{
		FirstName: entity.GenericFirstName,
		LastName:  entity.GenericLastName,
		Phone:     entity.GenericPhone,
	}
	if err := clients.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create generic client: %w", err)
	}
	return client, nil
}

// requireState loads seeded reference data. A missing row is a setup defect.
func requireState(ctx context.Context, states repository.StateRepository, name entity.ReservationState) (*entity.State, error) {
	state, err := states.GetByName(ctx, name)
	if errors.Is(err, entity.ErrNotFound) {
		logrus.WithField("state", name).Error("Reservation state missing from store, migrations were not applied")
		return nil, entity.NewError(entity.ErrConfigurationMissing, "No se encontró el estado \"%s\"", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state %s: %w", name, err)
	}
	return state, nil
}

func (s *reservationService) ListForClient(ctx context.Context, phone string) (*ReservationListResult, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, entity.NewError(entity.ErrMissingArgument, "Se requiere el teléfono del usuario")
	}

	client, err := s.clients.GetByPhone(ctx, phone)
	if errors.Is(err, entity.ErrNotFound) {
		return &ReservationListResult{
			Reservations: []ClientReservation{},
			Message:      "No se encontraron reservas para este número de teléfono",
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	state, err := requireState(ctx, s.states, entity.StateStarted)
	if err != nil {
		return nil, err
	}

	rows, err := s.reservations.ListByClientAndState(ctx, client.ID, state.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	if len(rows) == 0 {
		return &ReservationListResult{Reservations: []ClientReservation{}, Message: "No tenés reservas pendientes"}, nil
	}

	out := make([]ClientReservation, 0, len(rows))
	for _, r := range rows {
		out = append(out, ClientReservation{
			ID:        r.ID,
			Court:     orDefault(r.CourtName, "Desconocida"),
			Date:      r.Date.Display(),
			TimeRange: r.TimeRange,
			Amount:    r.Amount,
			State:     orDefault(string(r.State), "Desconocido"),
		})
	}
	return &ReservationListResult{
		Reservations: out,
		Message:      fmt.Sprintf("Encontramos %d reserva(s) pendiente(s)", len(out)),
	}, nil
}

func (s *reservationService) Cancel(ctx context.Context, id int64, phone string) (*CancelResult, error) {
	reservation, err := s.reservations.GetDetails(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, entity.NewError(entity.ErrNotFound, "No se encontró la reserva con ID %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	phone = strings.TrimSpace(phone)
	if phone != "" && reservation.ClientPhone != phone {
		return nil, entity.NewError(entity.ErrForbidden, "Esta reserva no te pertenece")
	}

	if reservation.State == entity.StateCancelled {
		return nil, entity.NewError(entity.ErrAlreadyCancelled, "Esta reserva ya está cancelada")
	}

	cancelled, err := requireState(ctx, s.states, entity.StateCancelled)
	if err != nil {
		return nil, err
	}
	err = s.reservations.UpdateState(ctx, id, cancelled.ID)
	if errors.Is(err, repository.ErrStateUnchanged) {
		// cancelled by a concurrent request since the read above
		return nil, entity.NewError(entity.ErrAlreadyCancelled, "Esta reserva ya está cancelada")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel reservation: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"reservation_id": id,
		"by_owner":       phone != "",
	}).Info("Reservation cancelled")

	s.emit(ctx, entity.EventReservationCancelled, &reservation.Reservation, reservation.CourtName, reservation.ClientPhone)

	return &CancelResult{
		ReservationID: id,
		Message: fmt.Sprintf("Reserva cancelada exitosamente. Cancha %s del %s a las %s",
			orDefault(reservation.CourtName, "Desconocida"), reservation.Date.Display(), reservation.TimeRange),
	}, nil
}

// Update re-validates availability only when date, time and court are all
// given. Partial updates are applied field by field; the store still refuses
// one that lands on an occupied slot.
func (s *reservationService) Update(ctx context.Context, id int64, req *UpdateReservationRequest) (*entity.ReservationDetails, error) {
	reservation, err := s.reservations.GetByID(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, entity.NewError(entity.ErrNotFound, "Reserva no encontrada")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	date := strings.TrimSpace(req.Date)
	timeInput := strings.TrimSpace(req.Time)
	courtName := strings.TrimSpace(req.CourtName)

	if date != "" && timeInput != "" && courtName != "" {
		check, err := s.availability.Check(ctx, courtName, date, timeInput)
		if err != nil {
			return nil, err
		}
		if !check.Available {
			return nil, entity.NewError(entity.ErrConflict, "%s", check.Message)
		}
		reservation.Date, _ = entity.ParseDate(date)
		reservation.TimeRange = check.TimeRange
		reservation.CourtID = check.CourtID
	} else {
		if date != "" {
			if reservation.Date, err = parseDate(date); err != nil {
				return nil, err
			}
		}
		if timeInput != "" {
			if reservation.TimeRange, err = normalizeTime(s.grid, timeInput); err != nil {
				return nil, err
			}
		}
		if courtName != "" {
			court, err := s.courts.GetByName(ctx, courtName)
			if errors.Is(err, entity.ErrNotFound) {
				return nil, entity.NewError(entity.ErrNotFound, "Cancha no encontrada")
			}
			if err != nil {
				return nil, fmt.Errorf("failed to get court: %w", err)
			}
			reservation.CourtID = court.ID
		}
	}

	if err := s.reservations.Update(ctx, reservation); err != nil {
		if errors.Is(err, entity.ErrConflict) {
			return nil, entity.NewError(entity.ErrConflict, "El horario %s del %s ya está ocupado",
				reservation.TimeRange, reservation.Date)
		}
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *reservationService) ListAll(ctx context.Context) ([]*entity.ReservationDetails, error) {
	rows, err := s.reservations.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return rows, nil
}

func (s *reservationService) Get(ctx context.Context, id int64) (*entity.ReservationDetails, error) {
	reservation, err := s.reservations.GetDetails(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, entity.NewError(entity.ErrNotFound, "Reserva no encontrada")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return reservation, nil
}

// Delete removes the row. Use Cancel to keep it as history.
func (s *reservationService) Delete(ctx context.Context, id int64) error {
	err := s.reservations.Delete(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return entity.NewError(entity.ErrNotFound, "Reserva no encontrada")
	}
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	logrus.WithField("reservation_id", id).Info("Reservation deleted")
	return nil
}

func (s *reservationService) emit(ctx context.Context, kind entity.ReservationEventType, r *entity.Reservation, court, phone string) {
	publishEvent(ctx, s.events, &entity.ReservationEvent{
		ID:            uuid.NewString(),
		Type:          kind,
		ReservationID: r.ID,
		Court:         court,
		Date:          r.Date.String(),
		TimeRange:     r.TimeRange,
		Phone:         phone,
		Amount:        r.Amount,
		At:            s.now(),
	})
}

// publishEvent never fails the caller; delivery problems are logged.
func publishEvent(ctx context.Context, events EventPublisher, event *entity.ReservationEvent) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, event); err != nil {
		logrus.WithFields(logrus.Fields{
			"event_id": event.ID,
			"type":     event.Type,
			"error":    err,
		}).Warn("Failed to publish reservation event")
	}
}

// FormatAmount prints prices without trailing zeros, 1000 as "1000" and 1500.5 as "1500.5".
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
