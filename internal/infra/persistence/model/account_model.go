package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountModel mirrors the 'accounts' table. AccountHolderID references users.id (UUID).
type AccountModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key"`
	AccountHolderID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_accounts_account_holder_id"`
	AccountHolder   *UserModel `gorm:"foreignKey:AccountHolderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (m *AccountModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	return nil
}

// Models lists every persistence model in migration order.
func Models() []any {
	return []any{
		&UserModel{},
		&AccountModel{},
	}
}
