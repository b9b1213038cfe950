package storage

import (
	"context"
	"errors"
	"time"

	"ringwin/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLedger implements Ledger on a gorm connection.
type GormLedger struct {
	db *gorm.DB
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

func (s *GormLedger) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{tx: tx})
	})
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormLedger) User(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormLedger) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormLedger) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *GormLedger) Competition(ctx context.Context, id uint) (*models.Competition, error) {
	var comp models.Competition
	if err := s.db.WithContext(ctx).First(&comp, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comp, nil
}

func (s *GormLedger) ActiveCompetitions(ctx context.Context) ([]models.Competition, error) {
	var comps []models.Competition
	if err := s.db.WithContext(ctx).Where("is_active = true").Order("id").Find(&comps).Error; err != nil {
		return nil, err
	}
	return comps, nil
}

func (s *GormLedger) CreateCompetition(ctx context.Context, comp *models.Competition) error {
	return s.db.WithContext(ctx).Create(comp).Error
}

func (s *GormLedger) Order(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (s *GormLedger) OrderBySessionRef(ctx context.Context, ref string) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Where("session_ref = ?", ref).First(&order).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (s *GormLedger) SetOrderSessionRef(ctx context.Context, orderID uint, ref string) error {
	return s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("session_ref", ref).Error
}

func (s *GormLedger) PendingOrdersBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.OrderPending, cutoff).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *GormLedger) TicketsByOrder(ctx context.Context, orderID uint) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (s *GormLedger) TransactionsByUser(ctx context.Context, userID uint) ([]models.Transaction, error) {
	var trxs []models.Transaction
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&trxs).Error; err != nil {
		return nil, err
	}
	return trxs, nil
}

func (s *GormLedger) WinnersByUser(ctx context.Context, userID uint) ([]models.Winner, error) {
	var winners []models.Winner
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&winners).Error; err != nil {
		return nil, err
	}
	return winners, nil
}

func (s *GormLedger) CreateSession(ctx context.Context, session *models.Session) error {
	return s.db.WithContext(ctx).Create(session).Error
}

func (s *GormLedger) SessionBySID(ctx context.Context, sid string) (*models.Session, error) {
	var session models.Session
	if err := s.db.WithContext(ctx).Where("s_id = ?", sid).First(&session).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

type gormTx struct {
	tx *gorm.DB
}

func (t *gormTx) UserForUpdate(id uint) (*models.User, error) {
	var user models.User
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (t *gormTx) SaveUser(user *models.User) error {
	return t.tx.Save(user).Error
}

func (t *gormTx) Competition(id uint) (*models.Competition, error) {
	var comp models.Competition
	if err := t.tx.First(&comp, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comp, nil
}

func (t *gormTx) OrderForUpdate(id uint) (*models.Order, error) {
	var order models.Order
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (t *gormTx) OrderBySessionRefForUpdate(ref string) (*models.Order, error) {
	var order models.Order
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("session_ref = ?", ref).First(&order).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (t *gormTx) CreateOrder(order *models.Order) error {
	return t.tx.Create(order).Error
}

func (t *gormTx) SetOrderStatus(orderID uint, from, to string) (bool, error) {
	res := t.tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (t *gormTx) AddSoldTickets(competitionID uint, qty int64) (bool, error) {
	// Guarded counter update so concurrent purchases cannot oversell.
	res := t.tx.Model(&models.Competition{}).
		Where("id = ? AND (max_tickets = 0 OR sold_tickets + ? <= max_tickets)", competitionID, qty).
		UpdateColumn("sold_tickets", gorm.Expr("sold_tickets + ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (t *gormTx) CreateTicket(ticket *models.Ticket) error {
	return t.tx.Create(ticket).Error
}

func (t *gormTx) AppendTransaction(trx *models.Transaction) error {
	return t.tx.Create(trx).Error
}

func (t *gormTx) CreateWinner(winner *models.Winner) error {
	return t.tx.Create(winner).Error
}
