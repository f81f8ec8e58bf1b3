package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MLVerification is the stored outcome of an on-demand model check a
// verifier runs against a project. One row per project; re-running the
// check overwrites the previous result.
type MLVerification struct {
	VerificationID uuid.UUID      `gorm:"column:verification_id;type:uuid;primaryKey" json:"id"`
	ProjectID      uuid.UUID      `gorm:"column:project_id;type:uuid;not null;uniqueIndex" json:"projectId"`
	MLScore        float64        `gorm:"column:ml_score;type:decimal(5,4);not null" json:"mlScore"`
	Confidence     float64        `gorm:"column:confidence;type:decimal(5,4);not null" json:"confidence"`
	RiskFactors    datatypes.JSON `gorm:"column:risk_factors" json:"riskFactors"`
	Recommendation string         `gorm:"column:recommendation;not null" json:"recommendation"`
	VerifierID     uuid.UUID      `gorm:"column:verifier_id;type:uuid;not null" json:"verifierId"`
	Timestamp      time.Time      `gorm:"column:timestamp;not null" json:"timestamp"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func (MLVerification) TableName() string {
	return "MLVerifications"
}

func (v *MLVerification) BeforeCreate(tx *gorm.DB) error {
	if v.VerificationID == uuid.Nil {
		v.VerificationID = uuid.New()
	}
	return nil
}
