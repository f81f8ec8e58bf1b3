package mrv

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"samudra-backend/internal/application/scoring"
	"samudra-backend/internal/domain"
	"samudra-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// File categories assigned by extension.
const (
	CategoryPhoto    = "photo"
	CategoryIoTData  = "iot_data"
	CategoryDocument = "document"
	CategoryOther    = "other"
)

// Service owns MRVData entities: validation, file manifests, submission.
type Service struct {
	DB     *gorm.DB
	Scorer scoring.Scorer
}

// SubmitInput is the MRV submission payload.
type SubmitInput struct {
	ProjectID        string           `json:"projectId"`
	SatelliteData    string           `json:"satelliteData"`
	CommunityReports string           `json:"communityReports"`
	SensorReadings   string           `json:"sensorReadings"`
	IoTData          string           `json:"iotData"`
	Notes            string           `json:"notes"`
	Files            []domain.MRVFile `json:"files"`
}

// Validate enforces the minimal evidence contract: project reference,
// satellite data and community reports are mandatory.
func (in *SubmitInput) Validate() error {
	switch {
	case strings.TrimSpace(in.ProjectID) == "":
		return apperrors.Validation("Missing required field: projectId")
	case strings.TrimSpace(in.SatelliteData) == "":
		return apperrors.Validation("Missing required field: satelliteData")
	case strings.TrimSpace(in.CommunityReports) == "":
		return apperrors.Validation("Missing required field: communityReports")
	}
	return nil
}

var extensionCategories = map[string]string{
	".jpg": CategoryPhoto, ".jpeg": CategoryPhoto, ".png": CategoryPhoto,
	".gif": CategoryPhoto, ".heic": CategoryPhoto, ".webp": CategoryPhoto,
	".csv": CategoryIoTData, ".json": CategoryIoTData, ".xml": CategoryIoTData,
	".pdf": CategoryDocument, ".doc": CategoryDocument, ".docx": CategoryDocument,
	".xls": CategoryDocument, ".xlsx": CategoryDocument, ".txt": CategoryDocument,
}

// CategorizeFiles assigns a category to each file by extension. Pure
// metadata; file contents are never read.
func CategorizeFiles(files []domain.MRVFile) []domain.MRVFile {
	out := make([]domain.MRVFile, len(files))
	for i, f := range files {
		category, ok := extensionCategories[strings.ToLower(filepath.Ext(f.Name))]
		if !ok {
			category = CategoryOther
		}
		f.Category = category
		out[i] = f
	}
	return out
}

// Submit validates the payload, scores it synchronously, and persists the
// MRV record while advancing the project to mrv_submitted in the same
// transaction. Once the project has been approved or rejected further
// submissions are refused; its status never moves backward. A scoring
// failure aborts the submission; nothing is written.
func (s *Service) Submit(ctx context.Context, in SubmitInput, managerID uuid.UUID) (*domain.MRVData, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	projectID, err := uuid.Parse(in.ProjectID)
	if err != nil {
		return nil, apperrors.Validation("Invalid projectId")
	}

	raw := domain.MRVRawData{
		SatelliteData:    in.SatelliteData,
		CommunityReports: in.CommunityReports,
		SensorReadings:   in.SensorReadings,
		IoTData:          in.IoTData,
		Notes:            in.Notes,
	}

	var record domain.MRVData
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project domain.Project
		if err := tx.Where("project_id = ?", projectID).First(&project).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("Project not found")
			}
			return err
		}
		if project.ManagerID != managerID {
			return apperrors.AccessDenied("Access denied: You can only submit MRV data for your own projects")
		}
		if project.Status == domain.ProjectStatusApproved || project.Status == domain.ProjectStatusRejected {
			return apperrors.InvalidState("Cannot submit MRV data: Project has already been " + project.Status)
		}

		// Scoring is required synchronously; its failure is fatal to the
		// submission since mlResults must be populated at creation time.
		result, err := s.Scorer.Score(ctx, &project, raw)
		if err != nil {
			return apperrors.External("ML scoring failed", err)
		}

		rawJSON, err := json.Marshal(raw)
		if err != nil {
			return err
		}
		filesJSON, err := json.Marshal(CategorizeFiles(in.Files))
		if err != nil {
			return err
		}

		record = domain.MRVData{
			MrvID:       uuid.New(),
			ProjectID:   project.ProjectID,
			ManagerID:   managerID,
			RawData:     datatypes.JSON(rawJSON),
			Files:       datatypes.JSON(filesJSON),
			Status:      domain.MRVStatusPending,
			SubmittedAt: time.Now().UTC(),
			MLResults: domain.MLResults{
				CarbonEstimate:     result.CarbonEstimate,
				BiomassHealthScore: result.BiomassHealthScore,
				EvidenceCid:        result.EvidenceCid,
			},
			Recommendation: result.Recommendation,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Project{}).
			Where("project_id = ?", project.ProjectID).
			Update("status", domain.ProjectStatusMRVSubmitted).Error
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("mrv_id", record.MrvID.String()).
		Str("project_id", record.ProjectID.String()).
		Float64("carbon_estimate", record.MLResults.CarbonEstimate).
		Msg("MRV data submitted and scored")
	return &record, nil
}

// ListPending returns all pending MRV records for verifier review.
func (s *Service) ListPending(ctx context.Context) ([]domain.MRVData, error) {
	var records []domain.MRVData
	if err := s.DB.WithContext(ctx).Where("status = ?", domain.MRVStatusPending).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
