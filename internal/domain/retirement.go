package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Retirement is the append-only audit record of a permanent credit
// retirement. Rows are never updated or deleted after creation.
type Retirement struct {
	RetirementID  uuid.UUID `gorm:"column:retirement_id;type:uuid;primaryKey" json:"id"`
	CreditID      uuid.UUID `gorm:"column:credit_id;type:uuid;not null;index" json:"creditId"`
	BuyerID       uuid.UUID `gorm:"column:buyer_id;type:uuid;not null;index" json:"buyerId"`
	Amount        float64   `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Reason        string    `gorm:"column:reason;not null" json:"reason"`
	RetiredAt     time.Time `gorm:"column:retired_at;not null" json:"retiredAt"`
	OnChainTxHash *string   `gorm:"column:on_chain_tx_hash" json:"onChainTxHash,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (Retirement) TableName() string {
	return "Retirements"
}

func (r *Retirement) BeforeCreate(tx *gorm.DB) error {
	if r.RetirementID == uuid.Nil {
		r.RetirementID = uuid.New()
	}
	return nil
}
