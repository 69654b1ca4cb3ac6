package agent

import (
	"context"
	"errors"
	"sync"

	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/schedule"
	"github.com/mateolafalce/padelpro/internal/service"
)

// scriptedModel replays replies in order and records what it was sent.
type scriptedModel struct {
	mu      sync.Mutex
	replies []*Reply
	err     error
	calls   [][]Message
	repeat  bool
}

func (m *scriptedModel) Complete(_ context.Context, messages []Message, _ []ToolSpec) (*Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, append([]Message(nil), messages...))
	if m.err != nil {
		return nil, m.err
	}
	if len(m.replies) == 0 {
		return &Reply{Content: "ok"}, nil
	}
	r := m.replies[0]
	if !m.repeat {
		m.replies = m.replies[1:]
	}
	return r, nil
}

// lastToolResult is the content of the last tool message sent in call i.
func (m *scriptedModel) lastToolResult(i int) string {
	msgs := m.calls[i]
	for j := len(msgs) - 1; j >= 0; j-- {
		if msgs[j].Role == RoleTool {
			return msgs[j].Content
		}
	}
	return ""
}

func toolCall(id, name, args string) *Reply {
	return &Reply{ToolCalls: []ToolCall{{ID: id, Name: name, Arguments: args}}}
}

type checkCall struct{ court, date, time string }

type fakeAvailability struct {
	grid     schedule.Grid
	occupied bool
	calls    []checkCall
}

func (f *fakeAvailability) Check(_ context.Context, court, date, timeInput string) (*service.AvailabilityResult, error) {
	f.calls = append(f.calls, checkCall{court, date, timeInput})
	if court != "Cancha A" {
		return nil, entity.NewError(entity.ErrNotFound, "No se encontró la cancha \"%s\"", court)
	}
	r, ok := f.grid.Normalize(timeInput)
	if !ok {
		return nil, entity.NewError(entity.ErrInvalidSlot, "Horario \"%s\" no válido", timeInput)
	}
	if f.occupied {
		return &service.AvailabilityResult{Available: false, Message: "ocupada", CourtID: 1, TimeRange: r}, nil
	}
	return &service.AvailabilityResult{Available: true, Message: "disponible", CourtID: 1, TimeRange: r}, nil
}

type fakeReservations struct {
	service.ReservationService

	created   []*service.CreateReservationRequest
	listed    []string
	cancelled []string
	createErr error
}

func (f *fakeReservations) Create(_ context.Context, req *service.CreateReservationRequest) (*service.BookingResult, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return &service.BookingResult{ReservationID: 42, TimeRange: req.Time, Amount: 15000, Message: "¡Reserva confirmada!"}, nil
}

func (f *fakeReservations) ListForClient(_ context.Context, phone string) (*service.ReservationListResult, error) {
	f.listed = append(f.listed, phone)
	return &service.ReservationListResult{Reservations: []service.ClientReservation{}, Message: "No tenés reservas pendientes"}, nil
}

func (f *fakeReservations) Cancel(_ context.Context, id int64, phone string) (*service.CancelResult, error) {
	f.cancelled = append(f.cancelled, phone)
	return &service.CancelResult{ReservationID: id, Message: "Reserva cancelada exitosamente"}, nil
}

type fakeCatalog struct {
	grid   schedule.Grid
	courts []*entity.CourtWithSlots
}

func (f *fakeCatalog) Grid() schedule.Grid { return f.grid }

func (f *fakeCatalog) ListAllSlots(context.Context) ([]*entity.Slot, error) { return nil, nil }

func (f *fakeCatalog) SlotsForCourt(context.Context, int64) ([]*entity.Slot, error) { return nil, nil }

func (f *fakeCatalog) CourtsWithSlots(context.Context) ([]*entity.CourtWithSlots, error) {
	return f.courts, nil
}

type fakeBusiness struct{}

func (fakeBusiness) Get(context.Context) (*entity.Business, error) {
	return &entity.Business{Name: "Complejo de Padel", Kind: "PadelPro", Address: "69 entre 119 y 120", CBU: "0000003100", Alias: "padel.pro"}, nil
}

func (fakeBusiness) Update(context.Context, *entity.Business) error { return nil }

type fakeHistory struct {
	service.HistoryService

	ops     []string
	stored  []*entity.ConversationMessage
	saveErr error
}

func (f *fakeHistory) Save(_ context.Context, user, role, message string) error {
	f.ops = append(f.ops, "save:"+role)
	if f.saveErr != nil {
		return f.saveErr
	}
	f.stored = append(f.stored, &entity.ConversationMessage{User: user, Role: role, Message: message})
	return nil
}

func (f *fakeHistory) Recent(_ context.Context, user string) ([]*entity.ConversationMessage, error) {
	f.ops = append(f.ops, "recent")
	var out []*entity.ConversationMessage
	for _, m := range f.stored {
		if m.User == user {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeHistory) Prune(context.Context, string) error {
	f.ops = append(f.ops, "prune")
	return nil
}

func (f *fakeHistory) Clear(_ context.Context, user string) (int64, error) {
	return int64(len(f.stored)), nil
}

var errBoom = errors.New("boom")
