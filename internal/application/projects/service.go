package projects

import (
	"context"
	"time"

	"samudra-backend/internal/application/identity"
	"samudra-backend/internal/application/notary"
	"samudra-backend/internal/domain"
	"samudra-backend/internal/pkg/apperrors"
	"samudra-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service owns Project entities: creation, listing, deletion.
type Service struct {
	DB       *gorm.DB
	Identity identity.Provider
	Notary   notary.Notary
}

// CreateInput is the project registration payload.
type CreateInput struct {
	Name                  string   `json:"name"`
	Description           string   `json:"description"`
	Location              string   `json:"location"`
	EcosystemType         string   `json:"ecosystemType"`
	Area                  float64  `json:"area"`
	Coordinates           *string  `json:"coordinates"`
	CommunityPartners     *string  `json:"communityPartners"`
	ExpectedCarbonCapture *float64 `json:"expectedCarbonCapture"`
}

// Validate checks required fields, the area bound and the ecosystem
// enumeration. Runs before any persistence write.
func (in *CreateInput) Validate() error {
	switch {
	case in.Name == "":
		return apperrors.Validation("Missing required field: name")
	case in.Description == "":
		return apperrors.Validation("Missing required field: description")
	case in.Location == "":
		return apperrors.Validation("Missing required field: location")
	case in.EcosystemType == "":
		return apperrors.Validation("Missing required field: ecosystemType")
	case in.Area == 0:
		return apperrors.Validation("Missing required field: area")
	}
	if in.Area <= 0 {
		return apperrors.Validation("Project area must be greater than 0")
	}
	if !constants.IsValidEcosystem(in.EcosystemType) {
		return apperrors.Validation("Invalid ecosystem type")
	}
	return nil
}

// Create registers a project for the calling manager. Notarization is
// best-effort: on notary failure the project is persisted with the tx hash
// unset.
func (s *Service) Create(ctx context.Context, in CreateInput, caller *identity.Identity) (*domain.Project, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	project := domain.Project{
		ProjectID:             uuid.New(),
		Name:                  in.Name,
		Description:           in.Description,
		Location:              in.Location,
		EcosystemType:         in.EcosystemType,
		Area:                  in.Area,
		Coordinates:           in.Coordinates,
		CommunityPartners:     in.CommunityPartners,
		ExpectedCarbonCapture: in.ExpectedCarbonCapture,
		Status:                domain.ProjectStatusRegistered,
		ManagerID:             caller.UserID,
		ManagerName:           caller.Name,
		ManagerEmail:          caller.Email,
		CreatedAt:             time.Now().UTC(),
	}

	if s.Notary != nil {
		tx, err := s.Notary.RecordTransaction(ctx, map[string]interface{}{
			"action":        "register_project",
			"projectId":     project.ProjectID.String(),
			"name":          project.Name,
			"location":      project.Location,
			"ecosystemType": project.EcosystemType,
			"area":          project.Area,
			"managerId":     project.ManagerID.String(),
		})
		if err != nil {
			log.Warn().Err(err).Str("project_id", project.ProjectID.String()).
				Msg("project notarization failed; continuing without tx hash")
		} else {
			project.OnChainTxHash = &tx.TxHash
		}
	}

	if err := s.DB.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListByManager returns the caller's own projects. Order is not part of the
// contract.
func (s *Service) ListByManager(ctx context.Context, managerID uuid.UUID) ([]domain.Project, error) {
	var projects []domain.Project
	if err := s.DB.WithContext(ctx).Where("manager_id = ?", managerID).Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ListAll returns every project enriched with manager display info. A failed
// manager lookup degrades that project's fields instead of failing the call.
func (s *Service) ListAll(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	if err := s.DB.WithContext(ctx).Find(&projects).Error; err != nil {
		return nil, err
	}

	for i := range projects {
		manager, err := s.Identity.GetUserByID(ctx, projects[i].ManagerID)
		if err != nil {
			log.Warn().Err(err).Str("manager_id", projects[i].ManagerID.String()).
				Msg("manager lookup failed during project enrichment")
			projects[i].ManagerName = "Unknown Manager"
			projects[i].ManagerEmail = "N/A"
			continue
		}
		projects[i].ManagerName = manager.Name
		projects[i].ManagerEmail = manager.Email
		if projects[i].ManagerName == "" {
			projects[i].ManagerName = "Unknown Manager"
		}
		if projects[i].ManagerEmail == "" {
			projects[i].ManagerEmail = "N/A"
		}
	}
	return projects, nil
}

// Delete removes a project permanently. Only the owning manager may delete,
// and only while the project is still in registered status.
func (s *Service) Delete(ctx context.Context, projectID, requesterID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project domain.Project
		if err := tx.Where("project_id = ?", projectID).First(&project).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("Project not found")
			}
			return err
		}
		if project.ManagerID != requesterID {
			return apperrors.AccessDenied("Access denied: You can only delete your own projects")
		}
		if project.Status != domain.ProjectStatusRegistered {
			return apperrors.InvalidState("Cannot delete project: Only unverified projects can be deleted")
		}
		return tx.Unscoped().Delete(&project).Error
	})
}
