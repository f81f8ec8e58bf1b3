package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CarbonCredit is issued only as the side effect of an MRV approval.
// Amount is the issued total in tCO2e and never changes; RemainingBalance is
// the unsold marketplace balance. OwnerID stays nil while the credit is on
// the marketplace and is set when a purchase exhausts the balance. Once
// IsRetired the credit is excluded from listings and further retirement.
type CarbonCredit struct {
	CreditID         uuid.UUID      `gorm:"column:credit_id;type:uuid;primaryKey" json:"id"`
	ProjectID        uuid.UUID      `gorm:"column:project_id;type:uuid;not null;index" json:"projectId"`
	MrvID            uuid.UUID      `gorm:"column:mrv_id;type:uuid;not null;uniqueIndex" json:"mrvId"`
	Amount           float64        `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	RemainingBalance float64        `gorm:"column:remaining_balance;type:decimal(18,2);not null" json:"remainingBalance"`
	OwnerID          *uuid.UUID     `gorm:"column:owner_id;type:uuid" json:"ownerId,omitempty"`
	IsRetired        bool           `gorm:"column:is_retired;not null;default:false" json:"isRetired"`
	HealthScore      float64        `gorm:"column:health_score;type:decimal(5,4);not null" json:"healthScore"`
	EvidenceCid      string         `gorm:"column:evidence_cid;not null" json:"evidenceCid"`
	VerifiedAt       time.Time      `gorm:"column:verified_at;not null" json:"verifiedAt"`
	OnChainTxHash    *string        `gorm:"column:on_chain_tx_hash" json:"onChainTxHash,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CarbonCredit) TableName() string {
	return "CarbonCredits"
}

func (c *CarbonCredit) BeforeCreate(tx *gorm.DB) error {
	if c.CreditID == uuid.Nil {
		c.CreditID = uuid.New()
	}
	return nil
}
