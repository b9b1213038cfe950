package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"ringwin/models"

	"github.com/google/uuid"
)

// MemoryLedger is an in-memory Ledger used by tests and local development.
// A single mutex serialises atomic units; a snapshot taken on entry restores
// state when the unit fails, matching the all-or-nothing behaviour of the
// database-backed ledger.
type MemoryLedger struct {
	mu sync.Mutex

	users        map[uint]models.User
	competitions map[uint]models.Competition
	orders       map[uint]models.Order
	tickets      []models.Ticket
	transactions []models.Transaction
	winners      []models.Winner
	sessions     map[string]models.Session

	nextID uint
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		users:        map[uint]models.User{},
		competitions: map[uint]models.Competition{},
		orders:       map[uint]models.Order{},
		sessions:     map[string]models.Session{},
		nextID:       1,
	}
}

func (s *MemoryLedger) id() uint {
	id := s.nextID
	s.nextID++
	return id
}

type memorySnapshot struct {
	users        map[uint]models.User
	competitions map[uint]models.Competition
	orders       map[uint]models.Order
	tickets      []models.Ticket
	transactions []models.Transaction
	winners      []models.Winner
	nextID       uint
}

func (s *MemoryLedger) snapshot() memorySnapshot {
	snap := memorySnapshot{
		users:        make(map[uint]models.User, len(s.users)),
		competitions: make(map[uint]models.Competition, len(s.competitions)),
		orders:       make(map[uint]models.Order, len(s.orders)),
		tickets:      append([]models.Ticket(nil), s.tickets...),
		transactions: append([]models.Transaction(nil), s.transactions...),
		winners:      append([]models.Winner(nil), s.winners...),
		nextID:       s.nextID,
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.competitions {
		snap.competitions[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	return snap
}

func (s *MemoryLedger) restore(snap memorySnapshot) {
	s.users = snap.users
	s.competitions = snap.competitions
	s.orders = snap.orders
	s.tickets = snap.tickets
	s.transactions = snap.transactions
	s.winners = snap.winners
	s.nextID = snap.nextID
}

func (s *MemoryLedger) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&memoryTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *MemoryLedger) User(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemoryLedger) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryLedger) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.id()
	user.CreatedAt = time.Now()
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryLedger) Competition(ctx context.Context, id uint) (*models.Competition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comp, ok := s.competitions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &comp, nil
}

func (s *MemoryLedger) ActiveCompetitions(ctx context.Context) ([]models.Competition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var comps []models.Competition
	for _, comp := range s.competitions {
		if comp.IsActive {
			comps = append(comps, comp)
		}
	}
	return comps, nil
}

func (s *MemoryLedger) CreateCompetition(ctx context.Context, comp *models.Competition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comp.ID = s.id()
	comp.CreatedAt = time.Now()
	s.competitions[comp.ID] = *comp
	return nil
}

func (s *MemoryLedger) Order(ctx context.Context, id uint) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &order, nil
}

func (s *MemoryLedger) OrderBySessionRef(ctx context.Context, ref string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderBySessionRef(ref)
}

func (s *MemoryLedger) orderBySessionRef(ref string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.SessionRef == ref {
			o := order
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryLedger) SetOrderSessionRef(ctx context.Context, orderID uint, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	order.SessionRef = ref
	s.orders[orderID] = order
	return nil
}

func (s *MemoryLedger) PendingOrdersBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []models.Order
	for _, order := range s.orders {
		if order.Status == models.OrderPending && order.CreatedAt.Before(cutoff) {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (s *MemoryLedger) TicketsByOrder(ctx context.Context, orderID uint) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tickets []models.Ticket
	for _, t := range s.tickets {
		if t.OrderID == orderID {
			tickets = append(tickets, t)
		}
	}
	return tickets, nil
}

func (s *MemoryLedger) TransactionsByUser(ctx context.Context, userID uint) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var trxs []models.Transaction
	for _, trx := range s.transactions {
		if trx.UserID == userID {
			trxs = append(trxs, trx)
		}
	}
	return trxs, nil
}

func (s *MemoryLedger) WinnersByUser(ctx context.Context, userID uint) ([]models.Winner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var winners []models.Winner
	for _, w := range s.winners {
		if w.UserID == userID {
			winners = append(winners, w)
		}
	}
	return winners, nil
}

func (s *MemoryLedger) CreateSession(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.ID = s.id()
	session.CreatedAt = time.Now()
	if session.SID == "" {
		session.SID = strings.ToLower(uuid.New().String())
	}
	s.sessions[session.SID] = *session
	return nil
}

func (s *MemoryLedger) SessionBySID(ctx context.Context, sid string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sid]
	if !ok {
		return nil, ErrNotFound
	}
	return &session, nil
}

type memoryTx struct {
	s *MemoryLedger
}

func (t *memoryTx) UserForUpdate(id uint) (*models.User, error) {
	user, ok := t.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (t *memoryTx) SaveUser(user *models.User) error {
	t.s.users[user.ID] = *user
	return nil
}

func (t *memoryTx) Competition(id uint) (*models.Competition, error) {
	comp, ok := t.s.competitions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &comp, nil
}

func (t *memoryTx) OrderForUpdate(id uint) (*models.Order, error) {
	order, ok := t.s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &order, nil
}

func (t *memoryTx) OrderBySessionRefForUpdate(ref string) (*models.Order, error) {
	return t.s.orderBySessionRef(ref)
}

func (t *memoryTx) CreateOrder(order *models.Order) error {
	order.ID = t.s.id()
	order.CreatedAt = time.Now()
	t.s.orders[order.ID] = *order
	return nil
}

func (t *memoryTx) SetOrderStatus(orderID uint, from, to string) (bool, error) {
	order, ok := t.s.orders[orderID]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	t.s.orders[orderID] = order
	return true, nil
}

func (t *memoryTx) AddSoldTickets(competitionID uint, qty int64) (bool, error) {
	comp, ok := t.s.competitions[competitionID]
	if !ok {
		return false, ErrNotFound
	}
	if comp.MaxTickets > 0 && comp.SoldTickets+qty > comp.MaxTickets {
		return false, nil
	}
	comp.SoldTickets += qty
	t.s.competitions[competitionID] = comp
	return true, nil
}

func (t *memoryTx) CreateTicket(ticket *models.Ticket) error {
	ticket.ID = t.s.id()
	ticket.CreatedAt = time.Now()
	t.s.tickets = append(t.s.tickets, *ticket)
	return nil
}

func (t *memoryTx) AppendTransaction(trx *models.Transaction) error {
	trx.ID = t.s.id()
	trx.CreatedAt = time.Now()
	t.s.transactions = append(t.s.transactions, *trx)
	return nil
}

func (t *memoryTx) CreateWinner(winner *models.Winner) error {
	winner.ID = t.s.id()
	winner.CreatedAt = time.Now()
	t.s.winners = append(t.s.winners, *winner)
	return nil
}
