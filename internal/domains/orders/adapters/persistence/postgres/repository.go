package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-shop-api-server/internal/domains/orders/domain"
	"github.com/Apurer/go-shop-api-server/internal/domains/orders/ports"
)

var (
	_ ports.Repository = (*Repository)(nil)
	_ ports.Stock      = (*Repository)(nil)
)

// Repository persists orders in PostgreSQL using GORM. Stock movements
// and order writes share one database transaction with the product row
// locked FOR UPDATE, so concurrent reservations on the same product
// serialize and can never overdraw.
type Repository struct {
	db        *gorm.DB
	lowStock  ports.LowStockFunc
	threshold int32
}

type Option func(*Repository)

// WithLowStockFunc registers a best-effort callback fired after a
// committed reservation leaves stock at or below the threshold.
func WithLowStockFunc(fn ports.LowStockFunc) Option {
	return func(r *Repository) {
		r.lowStock = fn
	}
}

// WithLowStockThreshold overrides the low-stock boundary.
func WithLowStockThreshold(threshold int32) Option {
	return func(r *Repository) {
		if threshold > 0 {
			r.threshold = threshold
		}
	}
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB
// lifecycle.
func NewRepository(db *gorm.DB, opts ...Option) *Repository {
	repo := &Repository{db: db, threshold: ports.DefaultLowStockThreshold}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo
}

// orderRecord maps the order aggregate to a relational table.
type orderRecord struct {
	ID           int64           `gorm:"primaryKey;column:id"`
	UserID       int64           `gorm:"column:user_id;index:idx_orders_user_status"`
	ProductID    int64           `gorm:"column:product_id;index"`
	CategoryID   int64           `gorm:"column:category_id"`
	Quantity     int32           `gorm:"column:quantity"`
	TotalPrice   decimal.Decimal `gorm:"column:total_price;type:numeric(10,2)"`
	Status       string          `gorm:"column:status;type:varchar(32);index:idx_orders_user_status"`
	IsCancelled  bool            `gorm:"column:is_cancelled"`
	CancelReason string          `gorm:"column:cancel_reason;size:255"`
	CreatedAt    time.Time       `gorm:"column:created_at;index"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// stockRow is the slice of the products table the order core touches.
type stockRow struct {
	ID       int64 `gorm:"primaryKey;column:id"`
	Quantity int32 `gorm:"column:quantity"`
}

func (stockRow) TableName() string { return "products" }

// CreateReserving reserves stock and inserts the order in a single
// transaction. Either both writes commit or neither does.
func (r *Repository) CreateReserving(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := *order
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	var (
		record    orderRecord
		remaining int32
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		left, err := reserveTx(tx, clone.ProductID, clone.Quantity)
		if err != nil {
			return err
		}
		remaining = left
		record = toRecord(&clone)
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	r.notifyLowStock(clone.ProductID, remaining)
	return r.GetByID(ctx, record.ID)
}

// CancelRestoring persists the cancelled order and restores its stock
// in a single transaction. The is_cancelled guard is re-checked on the
// locked row so restitution happens at most once per order.
func (r *Repository) CancelRestoring(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored orderRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&stored, "id = ?", order.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		if stored.IsCancelled {
			return domain.ErrAlreadyCancelled
		}
		if _, err := restoreTx(tx, stored.ProductID, stored.Quantity); err != nil {
			return err
		}
		return tx.Model(&orderRecord{}).Where("id = ?", stored.ID).
			Updates(map[string]any{
				"status":        string(domain.StatusCancelled),
				"is_cancelled":  true,
				"cancel_reason": order.CancelReason,
				"updated_at":    gorm.Expr("NOW()"),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, order.ID)
}

// Update persists status-only changes.
func (r *Repository) Update(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	result := r.db.WithContext(ctx).Model(&orderRecord{}).Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":     string(order.Status),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, order.ID)
}

// GetByID fetches an order by identifier.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// ListByUser returns the user's orders, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC").
		Find(&records, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(records), nil
}

// List returns all orders, newest first.
func (r *Repository) List(ctx context.Context) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(records), nil
}

// Reserve exposes the stock primitive standalone; callers that also
// persist an order should prefer CreateReserving for atomicity.
func (r *Repository) Reserve(ctx context.Context, productID int64, quantity int32) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	var remaining int32
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		left, err := reserveTx(tx, productID, quantity)
		remaining = left
		return err
	})
	if err != nil {
		return err
	}
	r.notifyLowStock(productID, remaining)
	return nil
}

// Restore exposes the stock primitive standalone. Not idempotent; the
// caller guards repeated restitution with the order's is_cancelled flag.
func (r *Repository) Restore(ctx context.Context, productID int64, quantity int32) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := restoreTx(tx, productID, quantity)
		return err
	})
}

// reserveTx locks the product row, verifies availability, and
// decrements. Returns the remaining quantity after the decrement.
func reserveTx(tx *gorm.DB, productID int64, quantity int32) (int32, error) {
	var product stockRow
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ports.ErrProductNotFound
		}
		return 0, err
	}
	if product.Quantity < quantity {
		return 0, &ports.InsufficientStockError{
			ProductID: productID,
			Requested: quantity,
			Available: product.Quantity,
		}
	}
	if err := tx.Model(&stockRow{}).Where("id = ?", productID).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity)).Error; err != nil {
		return 0, err
	}
	return product.Quantity - quantity, nil
}

// restoreTx locks the product row and increments.
func restoreTx(tx *gorm.DB, productID int64, quantity int32) (int32, error) {
	var product stockRow
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ports.ErrProductNotFound
		}
		return 0, err
	}
	if err := tx.Model(&stockRow{}).Where("id = ?", productID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity)).Error; err != nil {
		return 0, err
	}
	return product.Quantity + quantity, nil
}

func (r *Repository) notifyLowStock(productID int64, remaining int32) {
	if r.lowStock != nil && remaining <= r.threshold {
		r.lowStock(productID, remaining)
	}
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	return orderRecord{
		ID:           order.ID,
		UserID:       order.UserID,
		ProductID:    order.ProductID,
		CategoryID:   order.CategoryID,
		Quantity:     order.Quantity,
		TotalPrice:   order.TotalPrice,
		Status:       string(order.Status),
		IsCancelled:  order.IsCancelled,
		CancelReason: order.CancelReason,
	}
}

func toDomainOrders(records []orderRecord) []*domain.Order {
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders
}

func (r orderRecord) toDomain() *domain.Order {
	return &domain.Order{
		ID:           r.ID,
		UserID:       r.UserID,
		ProductID:    r.ProductID,
		CategoryID:   r.CategoryID,
		Quantity:     r.Quantity,
		TotalPrice:   r.TotalPrice,
		Status:       domain.Status(r.Status),
		IsCancelled:  r.IsCancelled,
		CancelReason: r.CancelReason,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
