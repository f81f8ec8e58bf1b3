package stats

import (
	"context"

	"samudra-backend/internal/domain"

	"gorm.io/gorm"
)

// Service aggregates public registry statistics. All figures are derivable
// from entity state; nothing here is authenticated.
type Service struct {
	DB *gorm.DB
}

// PublicStats is the landing-page aggregate.
type PublicStats struct {
	TotalProjects        int64   `json:"totalProjects"`
	ApprovedProjects     int64   `json:"approvedProjects"`
	TotalAreaHectares    float64 `json:"totalAreaHectares"`
	CreditsIssued        float64 `json:"creditsIssued"`
	CreditsRetired       float64 `json:"creditsRetired"`
	PendingVerifications int64   `json:"pendingVerifications"`
}

// Collect computes the aggregate in one pass per table.
func (s *Service) Collect(ctx context.Context) (*PublicStats, error) {
	db := s.DB.WithContext(ctx)
	var out PublicStats

	if err := db.Model(&domain.Project{}).Count(&out.TotalProjects).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Project{}).
		Where("status = ?", domain.ProjectStatusApproved).
		Count(&out.ApprovedProjects).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Project{}).
		Select("COALESCE(SUM(area), 0)").
		Scan(&out.TotalAreaHectares).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.CarbonCredit{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&out.CreditsIssued).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Retirement{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&out.CreditsRetired).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.MRVData{}).
		Where("status = ?", domain.MRVStatusPending).
		Count(&out.PendingVerifications).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
