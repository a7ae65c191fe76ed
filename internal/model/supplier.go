package model

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is a live-bird vendor referenced by purchases.
type Supplier struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null;index"`
	Contact   *string
	Phone     *string
	Address   *string
	Status    string `gorm:"type:varchar(20);not null;default:'ACTIVE'"` // ACTIVE | INACTIVE
	CreatedAt time.Time
	UpdatedAt time.Time
}
