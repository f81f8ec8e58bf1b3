package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Holding tracks a buyer's purchased balance for one credit. Retirements
// against a holding reduce Balance; the audit trail lives in Retirements.
type Holding struct {
	HoldingID uuid.UUID      `gorm:"column:holding_id;type:uuid;primaryKey" json:"holding_id"`
	BuyerID   uuid.UUID      `gorm:"column:buyer_id;type:uuid;not null;index:idx_holdings_buyer_credit,unique" json:"buyerId"`
	CreditID  uuid.UUID      `gorm:"column:credit_id;type:uuid;not null;index:idx_holdings_buyer_credit,unique" json:"creditId"`
	Balance   float64        `gorm:"column:balance;type:decimal(18,2);not null;default:0" json:"balance"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Holding) TableName() string {
	return "Holdings"
}

func (h *Holding) BeforeCreate(tx *gorm.DB) error {
	if h.HoldingID == uuid.Nil {
		h.HoldingID = uuid.New()
	}
	return nil
}
