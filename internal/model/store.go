package model

import (
	"time"

	"github.com/google/uuid"
)

// Store is a retail shop. Timezone drives settlement day boundaries, so every
// store carries an IANA zone name even when the whole chain runs in one region.
type Store struct {
	ID        int         `gorm:"primaryKey;autoIncrement"`
	Name      string      `gorm:"not null"`
	Address   *string
	Timezone  string      `gorm:"not null;default:'Asia/Kolkata'"`
	Status    StoreStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StoreStaff assigns a user to a store. Managers are accountable for the
// store's daily settlement and are the target of incentive scoring.
type StoreStaff struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID   int       `gorm:"not null;index;uniqueIndex:idx_store_user"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_store_user"`
	Role      string    `gorm:"type:varchar(20);not null;default:'staff'"` // manager | staff
	CreatedAt time.Time

	Store *Store `gorm:"foreignKey:StoreID"`
	User  *User  `gorm:"foreignKey:UserID"`
}

func (StoreStaff) TableName() string { return "store_staff" }
