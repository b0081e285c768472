package database

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DB is the global database handle for the application.
var DB *gorm.DB

var (
	initOnce sync.Once
	initErr  error
)

// User represents a registered operator account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex" json:"username"`
	Password  string    `json:"-"` // Hashed password, never exposed in JSON responses.
	CreatedAt time.Time `json:"created_at"`
}

// MonitoredDomain represents one domain on a user's watch list together
// with the result of its most recent scan. Records start as "Pending"
// with "N/A" certificate fields until the first scan fills them in.
type MonitoredDomain struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"index:idx_user_domain,unique" json:"username"`
	Domain        string    `gorm:"index:idx_user_domain,unique" json:"domain"`
	Status        string    `json:"status"`
	SSLExpiration string    `json:"ssl_expiration"`
	SSLIssuer     string    `json:"ssl_issuer"`
	Registrar     string    `json:"registrar"`
	DomainExpiry  time.Time `json:"domain_expiry"`
	LastCheck     time.Time `json:"last_check"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Init initializes the global SQLite database connection and runs
// migrations. It is safe to call Init multiple times; initialization
// will only happen once.
func Init(path string) error {
	initOnce.Do(func() {
		db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
		if err != nil {
			initErr = err
			return
		}

		if err := db.AutoMigrate(&User{}, &MonitoredDomain{}); err != nil {
			initErr = err
			return
		}

		DB = db
		log.Info().Str("path", path).Msg("database initialized and migrations applied")
	})

	return initErr
}
