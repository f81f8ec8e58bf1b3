package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MRV record statuses. pending is the only non-terminal state.
const (
	MRVStatusPending  = "pending"
	MRVStatusApproved = "approved"
	MRVStatusRejected = "rejected"
)

// MRVRawData is the evidence payload a manager submits. Satellite data and
// community reports are mandatory; the rest is optional.
type MRVRawData struct {
	SatelliteData    string `json:"satelliteData"`
	CommunityReports string `json:"communityReports"`
	SensorReadings   string `json:"sensorReadings,omitempty"`
	IoTData          string `json:"iotData,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

// MRVFile is one entry of the uploaded-file manifest. Category is derived
// from the file extension, never from content.
type MRVFile struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
	Category string `json:"category"`
}

// MLResults is written exactly once, synchronously at submission, and is
// immutable afterwards.
type MLResults struct {
	CarbonEstimate     float64 `gorm:"column:carbon_estimate;type:decimal(18,2);not null" json:"carbon_estimate"`
	BiomassHealthScore float64 `gorm:"column:biomass_health_score;type:decimal(5,4);not null" json:"biomass_health_score"`
	EvidenceCid        string  `gorm:"column:evidence_cid;not null" json:"evidenceCid"`
}

// MRVData is a monitoring/reporting/verification submission tied to a
// project. A verifier mutates it exactly once (approve or reject); records
// are never deleted.
type MRVData struct {
	MrvID             uuid.UUID      `gorm:"column:mrv_id;type:uuid;primaryKey" json:"id"`
	ProjectID         uuid.UUID      `gorm:"column:project_id;type:uuid;not null;index" json:"projectId"`
	ManagerID         uuid.UUID      `gorm:"column:manager_id;type:uuid;not null;index" json:"managerId"`
	RawData           datatypes.JSON `gorm:"column:raw_data;not null" json:"rawData"`
	Files             datatypes.JSON `gorm:"column:files" json:"files"`
	Status            string         `gorm:"column:status;not null;default:pending" json:"status"`
	SubmittedAt       time.Time      `gorm:"column:submitted_at;not null" json:"submittedAt"`
	MLResults         MLResults      `gorm:"embedded;embeddedPrefix:ml_" json:"mlResults"`
	Recommendation    string         `gorm:"column:recommendation" json:"recommendation,omitempty"`
	VerificationNotes *string        `gorm:"column:verification_notes" json:"verificationNotes,omitempty"`
	VerifiedBy        *uuid.UUID     `gorm:"column:verified_by;type:uuid" json:"verifiedBy,omitempty"`
	VerifiedAt        *time.Time     `gorm:"column:verified_at" json:"verifiedAt,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

func (MRVData) TableName() string {
	return "MRVData"
}

func (m *MRVData) BeforeCreate(tx *gorm.DB) error {
	if m.MrvID == uuid.Nil {
		m.MrvID = uuid.New()
	}
	return nil
}

// Terminal reports whether the record has already been approved or rejected.
func (m *MRVData) Terminal() bool {
	return m.Status == MRVStatusApproved || m.Status == MRVStatusRejected
}
