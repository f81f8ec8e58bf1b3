package verification

import (
	"context"
	"encoding/json"
	"time"

	"samudra-backend/internal/application/notary"
	"samudra-backend/internal/application/scoring"
	"samudra-backend/internal/domain"
	"samudra-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service applies the verifier's approve/reject decision to a pending MRV
// record. The state machine is pending -> approved | rejected; both outcomes
// are terminal and guarded, so a credit can never be issued twice for the
// same record. It also runs the on-demand ML project check verifiers use
// before deciding.
type Service struct {
	DB       *gorm.DB
	Notary   notary.Notary
	Verifier scoring.ProjectVerifier
}

// Outcome is the result of a review: the mutated MRV record and, on
// approval, the issued credit.
type Outcome struct {
	MRV    *domain.MRVData      `json:"mrvData"`
	Credit *domain.CarbonCredit `json:"credit,omitempty"`
}

// Review approves or rejects mrvID. On approval exactly one CarbonCredit is
// issued in the same transaction with amount equal to the record's carbon
// estimate; the project advances to its terminal status either way.
func (s *Service) Review(ctx context.Context, mrvID, verifierID uuid.UUID, approved bool, notes string) (*Outcome, error) {
	var out Outcome

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record domain.MRVData
		if err := tx.Where("mrv_id = ?", mrvID).First(&record).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("MRV record not found")
			}
			return err
		}
		if record.Terminal() {
			return apperrors.InvalidState("MRV record has already been " + record.Status)
		}

		now := time.Now().UTC()
		record.VerifiedBy = &verifierID
		record.VerifiedAt = &now
		if notes != "" {
			record.VerificationNotes = &notes
		}

		projectStatus := domain.ProjectStatusRejected
		if approved {
			record.Status = domain.MRVStatusApproved
			projectStatus = domain.ProjectStatusApproved
		} else {
			record.Status = domain.MRVStatusRejected
		}

		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Project{}).
			Where("project_id = ?", record.ProjectID).
			Update("status", projectStatus).Error; err != nil {
			return err
		}

		out.MRV = &record
		if !approved {
			return nil
		}

		credit := domain.CarbonCredit{
			CreditID:         uuid.New(),
			ProjectID:        record.ProjectID,
			MrvID:            record.MrvID,
			Amount:           record.MLResults.CarbonEstimate,
			RemainingBalance: record.MLResults.CarbonEstimate,
			HealthScore:      record.MLResults.BiomassHealthScore,
			EvidenceCid:      record.MLResults.EvidenceCid,
			VerifiedAt:       now,
		}
		if err := tx.Create(&credit).Error; err != nil {
			return err
		}
		out.Credit = &credit
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Notarization happens after the commit; its failure never rolls back
	// the decision.
	if approved && out.Credit != nil && s.Notary != nil {
		record, err := s.Notary.RecordTransaction(ctx, map[string]interface{}{
			"action":   "issue_credit",
			"creditId": out.Credit.CreditID.String(),
			"mrvId":    mrvID.String(),
			"amount":   out.Credit.Amount,
		})
		if err != nil {
			log.Warn().Err(err).Str("credit_id", out.Credit.CreditID.String()).
				Msg("credit issuance notarization failed; continuing without tx hash")
		} else {
			if err := s.DB.WithContext(ctx).Model(&domain.CarbonCredit{}).
				Where("credit_id = ?", out.Credit.CreditID).
				Update("on_chain_tx_hash", record.TxHash).Error; err == nil {
				out.Credit.OnChainTxHash = &record.TxHash
			}
		}
	}

	log.Info().
		Str("mrv_id", mrvID.String()).
		Str("verifier_id", verifierID.String()).
		Bool("approved", approved).
		Msg("MRV review recorded")
	return &out, nil
}

// VerifyProject runs the model check against projectID's stored registration
// data and persists the result. One result is kept per project; re-running
// replaces it.
func (s *Service) VerifyProject(ctx context.Context, projectID, verifierID uuid.UUID) (*domain.MLVerification, error) {
	var project domain.Project
	if err := s.DB.WithContext(ctx).Where("project_id = ?", projectID).First(&project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Project not found")
		}
		return nil, err
	}

	score, err := s.Verifier.VerifyProject(ctx, &project)
	if err != nil {
		return nil, apperrors.External("ML verification failed", err)
	}
	risksJSON, err := json.Marshal(score.RiskFactors)
	if err != nil {
		return nil, err
	}

	var record domain.MLVerification
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("project_id = ?", projectID).First(&record).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}
		record.ProjectID = projectID
		record.MLScore = score.Score
		record.Confidence = score.Confidence
		record.RiskFactors = datatypes.JSON(risksJSON)
		record.Recommendation = score.Recommendation
		record.VerifierID = verifierID
		record.Timestamp = time.Now().UTC()
		return tx.Save(&record).Error
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("project_id", projectID.String()).
		Str("verifier_id", verifierID.String()).
		Float64("ml_score", record.MLScore).
		Msg("ML project verification recorded")
	return &record, nil
}

// VerificationResult returns the stored model check for projectID.
func (s *Service) VerificationResult(ctx context.Context, projectID uuid.UUID) (*domain.MLVerification, error) {
	var record domain.MLVerification
	if err := s.DB.WithContext(ctx).Where("project_id = ?", projectID).First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("No ML verification found for this project")
		}
		return nil, err
	}
	return &record, nil
}
