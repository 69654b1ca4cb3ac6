package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mateolafalce/padelpro/internal/entity"
)

type CourtRepository interface {
	// slotIDs are associated in the same transaction
	Create(ctx context.Context, court *entity.Court, slotIDs []int64) error
	GetByID(ctx context.Context, id int64) (*entity.Court, error)
	GetByName(ctx context.Context, name string) (*entity.Court, error)
	GetAll(ctx context.Context) ([]*entity.Court, error)
	// A nil slotIDs keeps the current association set
	Update(ctx context.Context, court *entity.Court, slotIDs []int64) error
	Delete(ctx context.Context, id int64) error
}

type SlotRepository interface {
	GetAll(ctx context.Context) ([]*entity.Slot, error)
	GetByCourt(ctx context.Context, courtID int64) ([]*entity.Slot, error)
	GetByWeekday(ctx context.Context, weekday string) ([]*entity.Slot, error)
}

type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id int64) (*entity.Client, error)
	GetByPhone(ctx context.Context, phone string) (*entity.Client, error)
	GetByName(ctx context.Context, firstName, lastName string) (*entity.Client, error)
	GetByFirstName(ctx context.Context, firstName string) (*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
}

type StateRepository interface {
	GetByName(ctx context.Context, name entity.ReservationState) (*entity.State, error)
	GetByID(ctx context.Context, id int64) (*entity.State, error)
}

type ReservationRepository interface {
	// Create fails with entity.ErrConflict when the slot already holds a non-cancelled reservation
	Create(ctx context.Context, reservation *entity.Reservation) error
	GetByID(ctx context.Context, id int64) (*entity.Reservation, error)
	GetDetails(ctx context.Context, id int64) (*entity.ReservationDetails, error)
	// FindActive returns the non-cancelled reservation holding the slot
	FindActive(ctx context.Context, courtID int64, date entity.Date, timeRange string) (*entity.ReservationDetails, error)
	ListByClientAndState(ctx context.Context, clientID, stateID int64) ([]*entity.ReservationDetails, error)
	ListActiveByDate(ctx context.Context, date entity.Date) ([]*entity.ReservationDetails, error)
	ListAll(ctx context.Context) ([]*entity.ReservationDetails, error)
	// UpdateState fails with ErrStateUnchanged when the reservation already
	// has stateID, so concurrent transitions see each other.
	UpdateState(ctx context.Context, id, stateID int64) error
	Update(ctx context.Context, reservation *entity.Reservation) error
	Delete(ctx context.Context, id int64) error
}

type ConfigRepository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, values map[string]string) error
}

type ConversationRepository interface {
	Save(ctx context.Context, message *entity.ConversationMessage) error
	// Recent returns the last limit messages of user, oldest first
	Recent(ctx context.Context, user string, limit int) ([]*entity.ConversationMessage, error)
	Prune(ctx context.Context, user string, keep int) (int64, error)
	PruneAll(ctx context.Context, keep int) (int64, error)
	Clear(ctx context.Context, user string) (int64, error)
	ListUsers(ctx context.Context, offset, limit int) ([]*entity.ConversationUser, int64, error)
	UserStats(ctx context.Context, user string) (*entity.UserConversationStats, error)
	Stats(ctx context.Context) (*entity.ConversationStats, error)
}

// Repository groups every store the services need.
type Repository struct {
	Courts        CourtRepository
	Slots         SlotRepository
	Clients       ClientRepository
	States        StateRepository
	Reservations  ReservationRepository
	Config        ConfigRepository
	Conversations ConversationRepository
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Courts:        NewCourtRepository(db),
		Slots:         NewSlotRepository(db),
		Clients:       NewClientRepository(db),
		States:        NewStateRepository(db),
		Reservations:  NewReservationRepository(db),
		Config:        NewConfigRepository(db),
		Conversations: NewConversationRepository(db),
	}
}

const uniqueViolation = "23505"

var ErrStateUnchanged = errors.New("reservation already in the requested state")

// mapWriteError turns the active-slot unique violation into entity.ErrConflict.
func mapWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("failed to %s: %w", op, entity.ErrConflict)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, entity.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

func checkAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, entity.ErrNotFound)
	}
	return nil
}
