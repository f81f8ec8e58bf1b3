package verification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"samudra-backend/internal/application/notary"
	"samudra-backend/internal/application/scoring"
	"samudra-backend/internal/domain"
	"samudra-backend/internal/pkg/apperrors"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubNotary struct {
	fail bool
}

func (n *stubNotary) RecordTransaction(ctx context.Context, payload map[string]interface{}) (*notary.Transaction, error) {
	if n.fail {
		return nil, errors.New("rpc unreachable")
	}
	return &notary.Transaction{TxHash: "0xfeed", Status: notary.StatusPending}, nil
}

func (n *stubNotary) TransactionStatus(ctx context.Context, txHash string) (*notary.Transaction, error) {
	return &notary.Transaction{TxHash: txHash, Status: notary.StatusConfirmed}, nil
}

func setupVerificationTest(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Project{}, &domain.MRVData{}, &domain.CarbonCredit{}))
	return &Service{DB: db, Notary: &stubNotary{}}, db
}

func seedPendingMRV(t *testing.T, db *gorm.DB) domain.MRVData {
	t.Helper()
	project := domain.Project{
		ProjectID:     uuid.New(),
		Name:          "Sundarbans Buffer Zone",
		Description:   "d",
		Location:      "West Bengal",
		EcosystemType: "mangrove",
		Area:          200,
		Status:        domain.ProjectStatusMRVSubmitted,
		ManagerID:     uuid.New(),
	}
	require.NoError(t, db.Create(&project).Error)

	record := domain.MRVData{
		MrvID:     uuid.New(),
		ProjectID: project.ProjectID,
		ManagerID: project.ManagerID,
		RawData:   []byte(`{"satelliteData":"s","communityReports":"c"}`),
		Status:    domain.MRVStatusPending,
		MLResults: domain.MLResults{
			CarbonEstimate:     540.25,
			BiomassHealthScore: 0.91,
			EvidenceCid:        "QmSeededEvidenceCidSeededEvidenceCidSeeded1234",
		},
	}
	require.NoError(t, db.Create(&record).Error)
	return record
}

func TestReview_ApproveIssuesOneCredit(t *testing.T) {
	svc, db := setupVerificationTest(t)
	record := seedPendingMRV(t, db)
	verifierID := uuid.New()

	out, err := svc.Review(context.Background(), record.MrvID, verifierID, true, "evidence checks out")
	require.NoError(t, err)

	assert.Equal(t, domain.MRVStatusApproved, out.MRV.Status)
	require.NotNil(t, out.MRV.VerifiedBy)
	assert.Equal(t, verifierID, *out.MRV.VerifiedBy)
	require.NotNil(t, out.MRV.VerificationNotes)
	assert.Equal(t, "evidence checks out", *out.MRV.VerificationNotes)

	require.NotNil(t, out.Credit)
	assert.Equal(t, 540.25, out.Credit.Amount)
	assert.Equal(t, 540.25, out.Credit.RemainingBalance)
	assert.Equal(t, 0.91, out.Credit.HealthScore)
	require.NotNil(t, out.Credit.OnChainTxHash)
	assert.Equal(t, "0xfeed", *out.Credit.OnChainTxHash)

	var project domain.Project
	require.NoError(t, db.Where("project_id = ?", record.ProjectID).First(&project).Error)
	assert.Equal(t, domain.ProjectStatusApproved, project.Status)

	var credits int64
	require.NoError(t, db.Model(&domain.CarbonCredit{}).Count(&credits).Error)
	assert.EqualValues(t, 1, credits)
}

func TestReview_SecondDecisionRejected(t *testing.T) {
	svc, db := setupVerificationTest(t)
	record := seedPendingMRV(t, db)
	ctx := context.Background()

	_, err := svc.Review(ctx, record.MrvID, uuid.New(), true, "")
	require.NoError(t, err)

	_, err = svc.Review(ctx, record.MrvID, uuid.New(), true, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidState, apperrors.KindOf(err))
	assert.Equal(t, "MRV record has already been approved", apperrors.Message(err))

	_, err = svc.Review(ctx, record.MrvID, uuid.New(), false, "")
	assert.Equal(t, apperrors.KindInvalidState, apperrors.KindOf(err))

	var credits int64
	require.NoError(t, db.Model(&domain.CarbonCredit{}).Count(&credits).Error)
	assert.EqualValues(t, 1, credits)
}

func TestReview_RejectIssuesNoCredit(t *testing.T) {
	svc, db := setupVerificationTest(t)
	record := seedPendingMRV(t, db)

	out, err := svc.Review(context.Background(), record.MrvID, uuid.New(), false, "sensor data inconsistent")
	require.NoError(t, err)

	assert.Equal(t, domain.MRVStatusRejected, out.MRV.Status)
	assert.Nil(t, out.Credit)

	var project domain.Project
	require.NoError(t, db.Where("project_id = ?", record.ProjectID).First(&project).Error)
	assert.Equal(t, domain.ProjectStatusRejected, project.Status)

	var credits int64
	require.NoError(t, db.Model(&domain.CarbonCredit{}).Count(&credits).Error)
	assert.EqualValues(t, 0, credits)
}

func TestReview_UnknownRecord(t *testing.T) {
	svc, _ := setupVerificationTest(t)

	_, err := svc.Review(context.Background(), uuid.New(), uuid.New(), true, "")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestReview_NotaryFailureKeepsDecision(t *testing.T) {
	svc, db := setupVerificationTest(t)
	svc.Notary = &stubNotary{fail: true}
	record := seedPendingMRV(t, db)

	out, err := svc.Review(context.Background(), record.MrvID, uuid.New(), true, "")
	require.NoError(t, err)
	require.NotNil(t, out.Credit)
	assert.Nil(t, out.Credit.OnChainTxHash)

	var stored domain.CarbonCredit
	require.NoError(t, db.Where("credit_id = ?", out.Credit.CreditID).First(&stored).Error)
	assert.Nil(t, stored.OnChainTxHash)
}

type fixedVerifier struct {
	score *scoring.ProjectScore
	err   error
}

func (v *fixedVerifier) VerifyProject(ctx context.Context, project *domain.Project) (*scoring.ProjectScore, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.score, nil
}

func TestVerifyProject_StoresOneResultPerProject(t *testing.T) {
	svc, db := setupVerificationTest(t)
	require.NoError(t, db.AutoMigrate(&domain.MLVerification{}))
	svc.Verifier = &fixedVerifier{score: &scoring.ProjectScore{
		Score: 0.85, Confidence: 0.9, RiskFactors: []string{}, Recommendation: scoring.RecommendApprove,
	}}
	ctx := context.Background()

	project := domain.Project{
		ProjectID: uuid.New(), Name: "Gulf of Mannar Meadow", Description: "d",
		Location: "Tamil Nadu", EcosystemType: "seagrass", Area: 45,
		Status: domain.ProjectStatusRegistered, ManagerID: uuid.New(),
	}
	require.NoError(t, db.Create(&project).Error)
	verifierID := uuid.New()

	first, err := svc.VerifyProject(ctx, project.ProjectID, verifierID)
	require.NoError(t, err)
	assert.Equal(t, 0.85, first.MLScore)
	assert.Equal(t, scoring.RecommendApprove, first.Recommendation)
	assert.Equal(t, verifierID, first.VerifierID)

	// re-running replaces the stored result instead of adding a row
	svc.Verifier = &fixedVerifier{score: &scoring.ProjectScore{
		Score: 0.55, Confidence: 0.7,
		RiskFactors:    []string{"No site coordinates provided"},
		Recommendation: scoring.RecommendReject,
	}}
	second, err := svc.VerifyProject(ctx, project.ProjectID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, first.VerificationID, second.VerificationID)
	assert.Equal(t, 0.55, second.MLScore)

	var count int64
	require.NoError(t, db.Model(&domain.MLVerification{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	stored, err := svc.VerificationResult(ctx, project.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, 0.55, stored.MLScore)

	var risks []string
	require.NoError(t, json.Unmarshal(stored.RiskFactors, &risks))
	assert.Equal(t, []string{"No site coordinates provided"}, risks)
}

func TestVerifyProject_UnknownProject(t *testing.T) {
	svc, db := setupVerificationTest(t)
	require.NoError(t, db.AutoMigrate(&domain.MLVerification{}))
	svc.Verifier = &fixedVerifier{score: &scoring.ProjectScore{Score: 0.8}}

	_, err := svc.VerifyProject(context.Background(), uuid.New(), uuid.New())
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestVerifyProject_VerifierFailureWritesNothing(t *testing.T) {
	svc, db := setupVerificationTest(t)
	require.NoError(t, db.AutoMigrate(&domain.MLVerification{}))
	svc.Verifier = &fixedVerifier{err: errors.New("model endpoint down")}

	project := domain.Project{
		ProjectID: uuid.New(), Name: "p", Description: "d", Location: "l",
		EcosystemType: "mangrove", Area: 50,
		Status: domain.ProjectStatusRegistered, ManagerID: uuid.New(),
	}
	require.NoError(t, db.Create(&project).Error)

	_, err := svc.VerifyProject(context.Background(), project.ProjectID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindExternal, apperrors.KindOf(err))

	var count int64
	require.NoError(t, db.Model(&domain.MLVerification{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestVerificationResult_Missing(t *testing.T) {
	svc, db := setupVerificationTest(t)
	require.NoError(t, db.AutoMigrate(&domain.MLVerification{}))

	_, err := svc.VerificationResult(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Equal(t, "No ML verification found for this project", apperrors.Message(err))
}
