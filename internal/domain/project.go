package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project statuses. Transitions are one-way:
// registered -> mrv_submitted -> approved | rejected.
const (
	ProjectStatusRegistered   = "registered"
	ProjectStatusMRVSubmitted = "mrv_submitted"
	ProjectStatusApproved     = "approved"
	ProjectStatusRejected     = "rejected"
)

// Project is a coastal-restoration project owned by the manager who
// registered it. OnChainTxHash is a traceability reference only and stays
// nil when notarization was unavailable at creation time.
type Project struct {
	ProjectID             uuid.UUID      `gorm:"column:project_id;type:uuid;primaryKey" json:"id"`
	Name                  string         `gorm:"column:name;not null" json:"name"`
	Description           string         `gorm:"column:description;not null" json:"description"`
	Location              string         `gorm:"column:location;not null" json:"location"`
	EcosystemType         string         `gorm:"column:ecosystem_type;not null" json:"ecosystemType"`
	Area                  float64        `gorm:"column:area;type:decimal(18,2);not null" json:"area"`
	Coordinates           *string        `gorm:"column:coordinates" json:"coordinates,omitempty"`
	CommunityPartners     *string        `gorm:"column:community_partners" json:"communityPartners,omitempty"`
	ExpectedCarbonCapture *float64       `gorm:"column:expected_carbon_capture;type:decimal(18,2)" json:"expectedCarbonCapture,omitempty"`
	Status                string         `gorm:"column:status;not null;default:registered" json:"status"`
	ManagerID             uuid.UUID      `gorm:"column:manager_id;type:uuid;not null;index" json:"managerId"`
	ManagerName           string         `gorm:"-" json:"managerName,omitempty"`
	ManagerEmail          string         `gorm:"-" json:"managerEmail,omitempty"`
	OnChainTxHash         *string        `gorm:"column:on_chain_tx_hash" json:"onChainTxHash,omitempty"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string {
	return "Projects"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ProjectID == uuid.Nil {
		p.ProjectID = uuid.New()
	}
	return nil
}
