package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(
		&categoryRecord{},
		&productRecord{},
		&orderRecord{},
		&userRecord{},
		&sessionRecord{},
	); err != nil {
		return err
	}
	// AutoMigrate cannot express check constraints; quantity must never
	// go negative even if application-level guards regress.
	return db.Exec(`ALTER TABLE products DROP CONSTRAINT IF EXISTS chk_products_quantity_non_negative;
ALTER TABLE products ADD CONSTRAINT chk_products_quantity_non_negative CHECK (quantity >= 0)`).Error
}

// Category schema mirrors the catalog Postgres adapter.
type categoryRecord struct {
	ID          int64     `gorm:"primaryKey;column:id"`
	Name        string    `gorm:"column:name;size:100"`
	Description string    `gorm:"column:description"`
	CreatedBy   int64     `gorm:"column:created_by"`
	UpdatedBy   int64     `gorm:"column:updated_by"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (categoryRecord) TableName() string { return "categories" }

// Product schema mirrors the catalog Postgres adapter. The quantity
// column doubles as the order core's stock ledger.
type productRecord struct {
	ID          int64           `gorm:"primaryKey;column:id"`
	Name        string          `gorm:"column:name;size:200"`
	Description string          `gorm:"column:description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2)"`
	Quantity    int32           `gorm:"column:quantity"`
	Active      bool            `gorm:"column:is_active"`
	CategoryID  int64           `gorm:"column:category_id;index"`
	CreatedBy   int64           `gorm:"column:created_by"`
	UpdatedBy   int64           `gorm:"column:updated_by"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// Order schema mirrors the orders Postgres adapter.
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

// User schema mirrors the users Postgres adapter.
type userRecord struct {
	ID        int64          `gorm:"primaryKey;column:id"`
	Username  string         `gorm:"column:username;uniqueIndex"`
	FirstName string         `gorm:"column:first_name"`
	LastName  string         `gorm:"column:last_name"`
	Email     string         `gorm:"column:email"`
	Password  string         `gorm:"column:password_hash"`
	Phone     string         `gorm:"column:phone"`
	Roles     pq.StringArray `gorm:"column:roles;type:text[]"`
	LastSeen  *time.Time     `gorm:"column:last_seen;index"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Session schema mirrors the session store.
type sessionRecord struct {
	Token     string    `gorm:"primaryKey;column:token;size:512"`
	Username  string    `gorm:"column:username;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }
