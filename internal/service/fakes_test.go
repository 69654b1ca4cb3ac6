package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	repository "github.com/mateolafalce/padelpro/internal/database/postgres"
	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/schedule"
)

// memStore backs every repository interface with maps. Writes enforce the
// same one-active-reservation-per-slot rule as the uq_reserva_activa index.
type memStore struct {
	mu           sync.Mutex
	nextID       int64
	courts       map[int64]*entity.Court
	courtSlots   map[int64][]int64
	slots        []*entity.Slot
	clients      map[int64]*entity.Client
	states       map[int64]*entity.State
	reservations map[int64]*entity.Reservation
	config       map[string]string
	messages     []*entity.ConversationMessage
}

func newMemStore(grid schedule.Grid) *memStore {
	s := &memStore{
		nextID:       100,
		courts:       make(map[int64]*entity.Court),
		courtSlots:   make(map[int64][]int64),
		clients:      make(map[int64]*entity.Client),
		states:       make(map[int64]*entity.State),
		reservations: make(map[int64]*entity.Reservation),
		config:       make(map[string]string),
	}
	for i, name := range entity.States {
		id := int64(i + 1)
		s.states[id] = &entity.State{ID: id, Name: name}
	}
	for _, day := range schedule.Weekdays {
		for _, r := range grid.Ranges() {
			s.slots = append(s.slots, &entity.Slot{ID: s.id(), Weekday: day, TimeRange: r})
		}
	}
	return s
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) repository() *repository.Repository {
	return &repository.Repository{
		Courts:        courtsRepo{s},
		Slots:         slotsRepo{s},
		Clients:       clientsRepo{s},
		States:        statesRepo{s},
		Reservations:  reservationsRepo{s},
		Config:        configRepo{s},
		Conversations: conversationsRepo{s},
	}
}

func (s *memStore) addCourt(name string, price float64) *entity.Court {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &entity.Court{ID: s.id(), Name: name, Capacity: 4, Price: price}
	s.courts[c.ID] = c
	return c
}

func (s *memStore) addClient(first, last, phone string) *entity.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &entity.Client{ID: s.id(), FirstName: first, LastName: last, Phone: phone}
	s.clients[c.ID] = c
	return c
}

func (s *memStore) reservation(id int64) entity.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.reservations[id]
}

func (s *memStore) client(id int64) entity.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.clients[id]
}

func (s *memStore) clientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// occupied must be called with mu held.
func (s *memStore) occupied(r *entity.Reservation) bool {
	if r.StateID == entity.StateCancelledID {
		return false
	}
	for _, other := range s.reservations {
		if other.ID != r.ID && other.StateID != entity.StateCancelledID &&
			other.CourtID == r.CourtID && other.Date.Equal(r.Date.Time) && other.TimeRange == r.TimeRange {
			return true
		}
	}
	return false
}

func (s *memStore) details(r *entity.Reservation) *entity.ReservationDetails {
	d := &entity.ReservationDetails{Reservation: *r}
	if c, ok := s.courts[r.CourtID]; ok {
		d.CourtName = c.Name
	}
	if cl, ok := s.clients[r.ClientID]; ok {
		d.ClientName = strings.TrimSpace(cl.FirstName + " " + cl.LastName)
		d.ClientPhone = cl.Phone
	}
	if st, ok := s.states[r.StateID]; ok {
		d.State = st.Name
	}
	return d
}

func (s *memStore) sortedReservations(keep func(*entity.Reservation) bool) []*entity.ReservationDetails {
	var out []*entity.ReservationDetails
	for _, r := range s.reservations {
		if keep(r) {
			out = append(out, s.details(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		if out[i].TimeRange != out[j].TimeRange {
			return out[i].TimeRange < out[j].TimeRange
		}
		return out[i].ID < out[j].ID
	})
	return out
}

var errNotFound = fmt.Errorf("fake: %w", entity.ErrNotFound)

type courtsRepo struct{ s *memStore }

func (r courtsRepo) Create(_ context.Context, court *entity.Court, slotIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	court.ID = r.s.id()
	c := *court
	r.s.courts[c.ID] = &c
	r.s.courtSlots[c.ID] = append([]int64(nil), slotIDs...)
	return nil
}

func (r courtsRepo) GetByID(_ context.Context, id int64) (*entity.Court, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courts[id]
	if !ok {
		return nil, errNotFound
	}
	out := *c
	return &out, nil
}

func (r courtsRepo) GetByName(_ context.Context, name string) (*entity.Court, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var found *entity.Court
	for _, c := range r.s.courts {
		if c.Name == name && (found == nil || c.ID < found.ID) {
			found = c
		}
	}
	if found == nil {
		return nil, errNotFound
	}
	out := *found
	return &out, nil
}

func (r courtsRepo) GetAll(_ context.Context) ([]*entity.Court, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Court
	for _, c := range r.s.courts {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r courtsRepo) Update(_ context.Context, court *entity.Court, slotIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.courts[court.ID]; !ok {
		return errNotFound
	}
	c := *court
	r.s.courts[c.ID] = &c
	if slotIDs != nil {
		r.s.courtSlots[c.ID] = append([]int64{}, slotIDs...)
	}
	return nil
}

func (r courtsRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.courts[id]; !ok {
		return errNotFound
	}
	delete(r.s.courts, id)
	delete(r.s.courtSlots, id)
	for rid, res := range r.s.reservations {
		if res.CourtID == id {
			delete(r.s.reservations, rid)
		}
	}
	return nil
}

type slotsRepo struct{ s *memStore }

func (r slotsRepo) GetAll(_ context.Context) ([]*entity.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(*entity.Slot) bool { return true }), nil
}

func (r slotsRepo) GetByCourt(_ context.Context, courtID int64) ([]*entity.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	linked := make(map[int64]bool)
	for _, id := range r.s.courtSlots[courtID] {
		linked[id] = true
	}
	return r.sorted(func(sl *entity.Slot) bool { return linked[sl.ID] }), nil
}

func (r slotsRepo) GetByWeekday(_ context.Context, weekday string) ([]*entity.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(sl *entity.Slot) bool { return sl.Weekday == weekday }), nil
}

func (r slotsRepo) sorted(keep func(*entity.Slot) bool) []*entity.Slot {
	var out []*entity.Slot
	for _, sl := range r.s.slots {
		if keep(sl) {
			cp := *sl
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := schedule.WeekdayIndex(out[i].Weekday), schedule.WeekdayIndex(out[j].Weekday)
		if di != dj {
			return di < dj
		}
		return out[i].TimeRange < out[j].TimeRange
	})
	return out
}

type clientsRepo struct{ s *memStore }

func (r clientsRepo) Create(_ context.Context, client *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	client.ID = r.s.id()
	c := *client
	r.s.clients[c.ID] = &c
	return nil
}

func (r clientsRepo) GetByID(_ context.Context, id int64) (*entity.Client, error) {
	return r.first(func(c *entity.Client) bool { return c.ID == id })
}

func (r clientsRepo) GetByPhone(_ context.Context, phone string) (*entity.Client, error) {
	return r.first(func(c *entity.Client) bool { return c.Phone == phone })
}

func (r clientsRepo) GetByName(_ context.Context, first, last string) (*entity.Client, error) {
	return r.first(func(c *entity.Client) bool { return c.FirstName == first && c.LastName == last })
}

func (r clientsRepo) GetByFirstName(_ context.Context, first string) (*entity.Client, error) {
	return r.first(func(c *entity.Client) bool { return c.FirstName == first })
}

func (r clientsRepo) Update(_ context.Context, client *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[client.ID]; !ok {
		return errNotFound
	}
	c := *client
	r.s.clients[c.ID] = &c
	return nil
}

func (r clientsRepo) first(match func(*entity.Client) bool) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var found *entity.Client
	for _, c := range r.s.clients {
		if match(c) && (found == nil || c.ID < found.ID) {
			found = c
		}
	}
	if found == nil {
		return nil, errNotFound
	}
	out := *found
	return &out, nil
}

type statesRepo struct{ s *memStore }

func (r statesRepo) GetByName(_ context.Context, name entity.ReservationState) (*entity.State, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range r.s.states {
		if st.Name == name {
			out := *st
			return &out, nil
		}
	}
	return nil, errNotFound
}

func (r statesRepo) GetByID(_ context.Context, id int64) (*entity.State, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.states[id]
	if !ok {
		return nil, errNotFound
	}
	out := *st
	return &out, nil
}

type reservationsRepo struct{ s *memStore }

func (r reservationsRepo) Create(_ context.Context, reservation *entity.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.occupied(reservation) {
		return fmt.Errorf("failed to create reservation: %w", entity.ErrConflict)
	}
	reservation.ID = r.s.id()
	res := *reservation
	r.s.reservations[res.ID] = &res
	return nil
}

func (r reservationsRepo) GetByID(_ context.Context, id int64) (*entity.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.reservations[id]
	if !ok {
		return nil, errNotFound
	}
	out := *res
	return &out, nil
}

func (r reservationsRepo) GetDetails(_ context.Context, id int64) (*entity.ReservationDetails, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.reservations[id]
	if !ok {
		return nil, errNotFound
	}
	return r.s.details(res), nil
}

func (r reservationsRepo) FindActive(_ context.Context, courtID int64, date entity.Date, timeRange string) (*entity.ReservationDetails, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := r.s.sortedReservations(func(res *entity.Reservation) bool {
		return res.CourtID == courtID && res.Date.Equal(date.Time) && res.TimeRange == timeRange &&
			res.StateID != entity.StateCancelledID
	})
	if len(rows) == 0 {
		return nil, errNotFound
	}
	return rows[0], nil
}

func (r reservationsRepo) ListByClientAndState(_ context.Context, clientID, stateID int64) ([]*entity.ReservationDetails, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.sortedReservations(func(res *entity.Reservation) bool {
		return res.ClientID == clientID && res.StateID == stateID
	}), nil
}

func (r reservationsRepo) ListActiveByDate(_ context.Context, date entity.Date) ([]*entity.ReservationDetails, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.sortedReservations(func(res *entity.Reservation) bool {
		return res.Date.Equal(date.Time) && res.StateID != entity.StateCancelledID
	}), nil
}

func (r reservationsRepo) ListAll(_ context.Context) ([]*entity.ReservationDetails, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.sortedReservations(func(*entity.Reservation) bool { return true }), nil
}

func (r reservationsRepo) UpdateState(_ context.Context, id, stateID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.reservations[id]
	if !ok {
		return errNotFound
	}
	if res.StateID == stateID {
		return repository.ErrStateUnchanged
	}
	next := *res
	next.StateID = stateID
	if r.s.occupied(&next) {
		return fmt.Errorf("failed to update reservation state: %w", entity.ErrConflict)
	}
	r.s.reservations[id] = &next
	return nil
}

func (r reservationsRepo) Update(_ context.Context, reservation *entity.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reservations[reservation.ID]; !ok {
		return errNotFound
	}
	if r.s.occupied(reservation) {
		return fmt.Errorf("failed to update reservation: %w", entity.ErrConflict)
	}
	next := *reservation
	r.s.reservations[next.ID] = &next
	return nil
}

func (r reservationsRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reservations[id]; !ok {
		return errNotFound
	}
	delete(r.s.reservations, id)
	return nil
}

type configRepo struct{ s *memStore }

func (r configRepo) GetAll(_ context.Context) (map[string]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]string, len(r.s.config))
	for k, v := range r.s.config {
		out[k] = v
	}
	return out, nil
}

func (r configRepo) Upsert(_ context.Context, values map[string]string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, v := range values {
		r.s.config[k] = v
	}
	return nil
}

type conversationsRepo struct{ s *memStore }

func (r conversationsRepo) Save(_ context.Context, m *entity.ConversationMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = r.s.id()
	if m.At.IsZero() {
		m.At = time.Now()
	}
	cp := *m
	r.s.messages = append(r.s.messages, &cp)
	return nil
}

func (r conversationsRepo) byUser(user string) []*entity.ConversationMessage {
	var out []*entity.ConversationMessage
	for _, m := range r.s.messages {
		if m.User == user {
			out = append(out, m)
		}
	}
	return out
}

func (r conversationsRepo) Recent(_ context.Context, user string, limit int) ([]*entity.ConversationMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	msgs := r.byUser(user)
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (r conversationsRepo) Prune(_ context.Context, user string, keep int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.pruneLocked(func(u string) bool { return u == user }, keep), nil
}

func (r conversationsRepo) PruneAll(_ context.Context, keep int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.pruneLocked(func(string) bool { return true }, keep), nil
}

func (r conversationsRepo) pruneLocked(match func(string) bool, keep int) int64 {
	counts := make(map[string]int)
	for _, m := range r.s.messages {
		counts[m.User]++
	}
	var kept []*entity.ConversationMessage
	var removed int64
	seen := make(map[string]int)
	for _, m := range r.s.messages {
		seen[m.User]++
		if match(m.User) && counts[m.User]-seen[m.User] >= keep {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	r.s.messages = kept
	return removed
}

func (r conversationsRepo) Clear(_ context.Context, user string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.pruneLocked(func(u string) bool { return u == user }, 0), nil
}

func (r conversationsRepo) ListUsers(_ context.Context, offset, limit int) ([]*entity.ConversationUser, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	index := make(map[string]*entity.ConversationUser)
	var users []*entity.ConversationUser
	for _, m := range r.s.messages {
		u, ok := index[m.User]
		if !ok {
			u = &entity.ConversationUser{User: m.User, Kind: entity.ConversationKind(m.User)}
			index[m.User] = u
			users = append(users, u)
		}
		u.TotalMessages++
		if m.At.After(u.LastMessage) {
			u.LastMessage = m.At
		}
	}
	total := int64(len(users))
	if offset >= len(users) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(users) {
		end = len(users)
	}
	return users[offset:end], total, nil
}

func (r conversationsRepo) UserStats(_ context.Context, user string) (*entity.UserConversationStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &entity.UserConversationStats{}
	for _, m := range r.byUser(user) {
		stats.TotalMessages++
		switch m.Role {
		case entity.RoleUser:
			stats.UserMessages++
		case entity.RoleAssistant:
			stats.AssistantMessages++
		}
		at := m.At
		if stats.FirstMessage == nil {
			stats.FirstMessage = &at
		}
		stats.LastMessage = &at
	}
	return stats, nil
}

func (r conversationsRepo) Stats(_ context.Context) (*entity.ConversationStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &entity.ConversationStats{MessagesByRole: make(map[string]int64)}
	users := make(map[string]bool)
	for _, m := range r.s.messages {
		stats.TotalMessages++
		stats.MessagesByRole[m.Role]++
		users[m.User] = true
	}
	stats.TotalUsers = int64(len(users))
	return stats, nil
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*entity.ReservationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e *entity.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []entity.ReservationEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []entity.ReservationEventType
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var errBroker = errors.New("broker down")

// fixture wires every service over one memStore.
type fixture struct {
	store        *memStore
	events       *recordingPublisher
	availability AvailabilityService
	reservations ReservationService
	blocks       BlockService
	catalog      CatalogService
}

func newFixture() *fixture {
	grid := schedule.Spaced()
	store := newMemStore(grid)
	repo := store.repository()
	events := &recordingPublisher{}
	availability := NewAvailabilityService(grid, repo.Courts, repo.Reservations)
	return &fixture{
		store:        store,
		events:       events,
		availability: availability,
		reservations: NewReservationService(grid, availability, repo, events),
		blocks:       NewBlockService(grid, repo, events),
		catalog:      NewCatalogService(grid, repo.Courts, repo.Slots),
	}
}
