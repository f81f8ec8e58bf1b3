package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"samudra-backend/internal/application/identity"
	"samudra-backend/internal/application/notary"
	"samudra-backend/internal/application/scoring"
	"samudra-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixedScorer struct{}

func (fixedScorer) Score(ctx context.Context, project *domain.Project, raw domain.MRVRawData) (*scoring.Result, error) {
	return &scoring.Result{
		CarbonEstimate:     450.5,
		BiomassHealthScore: 0.87,
		EvidenceCid:        "QmFixedEvidenceCidFixedEvidenceCidFixedEvid123",
		Recommendation:     scoring.RecommendApprove,
	}, nil
}

func (fixedScorer) VerifyProject(ctx context.Context, project *domain.Project) (*scoring.ProjectScore, error) {
	return &scoring.ProjectScore{
		Score:          0.92,
		Confidence:     0.95,
		RiskFactors:    []string{},
		Recommendation: scoring.RecommendApprove,
	}, nil
}

type stubNotary struct{}

func (stubNotary) RecordTransaction(ctx context.Context, payload map[string]interface{}) (*notary.Transaction, error) {
	return &notary.Transaction{TxHash: "0xstub", Status: notary.StatusPending}, nil
}

func (stubNotary) TransactionStatus(ctx context.Context, txHash string) (*notary.Transaction, error) {
	return &notary.Transaction{TxHash: txHash, Status: notary.StatusConfirmed}, nil
}

type testEnv struct {
	app   *fiber.App
	local *identity.LocalProvider
	db    *gorm.DB
}

func setupRouterTest(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Project{}, &domain.MRVData{}, &domain.MLVerification{},
		&domain.CarbonCredit{}, &domain.Holding{}, &domain.Retirement{},
	))

	local := identity.NewLocalProvider(db)
	app := New(Deps{
		DB:          db,
		Provider:    local,
		Local:       local,
		Notary:      stubNotary{},
		Scorer:      fixedScorer{},
		Verifier:    fixedScorer{},
		NCCRDomains: []string{"nccr.gov.in"},
	})
	return &testEnv{app: app, local: local, db: db}
}

func (e *testEnv) userToken(t *testing.T, email, name, role string) string {
	t.Helper()
	id, err := e.local.CreateUser(context.Background(), email, "Password1!", name, role)
	require.NoError(t, err)
	return e.local.IssueToken(id.UserID)
}

func (e *testEnv) request(t *testing.T, method, path, token string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestHealthAndStatsArePublic(t *testing.T) {
	env := setupRouterTest(t)

	resp, body := env.request(t, "GET", "/health", "", nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	resp, body = env.request(t, "GET", "/public/stats", "", nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 0.0, body["totalProjects"])
}

func TestSignupAndLogin(t *testing.T) {
	env := setupRouterTest(t)

	resp, body := env.request(t, "POST", "/signup", "", map[string]interface{}{
		"email": "buyer@example.com", "password": "Password1!", "name": "Ravi Kumar",
	})
	require.Equal(t, 201, resp.StatusCode)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "buyer", user["role"])

	// verifier signups are gated on the allowlisted domain
	resp, body = env.request(t, "POST", "/signup", "", map[string]interface{}{
		"email": "imposter@gmail.com", "password": "Password1!", "name": "Not A Verifier",
		"role": "nccr_verifier",
	})
	assert.Equal(t, 403, resp.StatusCode)
	assert.Equal(t, "Email domain is not authorized for NCCR verification", body["error"])

	resp, _ = env.request(t, "POST", "/signup", "", map[string]interface{}{
		"email": "verifier@nccr.gov.in", "password": "Password1!", "name": "Meera Iyer",
		"role": "nccr_verifier",
	})
	assert.Equal(t, 201, resp.StatusCode)

	resp, body = env.request(t, "POST", "/login", "", map[string]interface{}{
		"email": "buyer@example.com", "password": "Password1!",
	})
	require.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, body["access_token"])

	resp, _ = env.request(t, "POST", "/login", "", map[string]interface{}{
		"email": "buyer@example.com", "password": "wrong",
	})
	assert.Equal(t, 401, resp.StatusCode)
}

func TestCheckNCCREligibility(t *testing.T) {
	env := setupRouterTest(t)

	resp, body := env.request(t, "POST", "/check-nccr-eligibility", "", map[string]interface{}{
		"email": "verifier@nccr.gov.in",
	})
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, true, body["eligible"])

	_, body = env.request(t, "POST", "/check-nccr-eligibility", "", map[string]interface{}{
		"email": "someone@gmail.com",
	})
	assert.Equal(t, false, body["eligible"])
}

func TestRoleGating(t *testing.T) {
	env := setupRouterTest(t)
	buyerToken := env.userToken(t, "buyer@example.com", "Ravi Kumar", "buyer")
	managerToken := env.userToken(t, "manager@example.com", "Asha Nair", "project_manager")

	resp, _ := env.request(t, "POST", "/projects/", "", map[string]interface{}{})
	assert.Equal(t, 401, resp.StatusCode)

	resp, _ = env.request(t, "POST", "/projects/", buyerToken, map[string]interface{}{})
	assert.Equal(t, 403, resp.StatusCode)

	resp, _ = env.request(t, "GET", "/projects/all", managerToken, nil)
	assert.Equal(t, 403, resp.StatusCode)

	resp, _ = env.request(t, "GET", "/credits/available", managerToken, nil)
	assert.Equal(t, 403, resp.StatusCode)
}

// Full lifecycle: register project, submit MRV, approve, list, retire.
func TestRegistryLifecycle(t *testing.T) {
	env := setupRouterTest(t)
	managerToken := env.userToken(t, "manager@example.com", "Asha Nair", "project_manager")
	verifierToken := env.userToken(t, "verifier@nccr.gov.in", "Meera Iyer", "nccr_verifier")
	buyerToken := env.userToken(t, "buyer@example.com", "Ravi Kumar", "buyer")

	// manager registers a project
	resp, body := env.request(t, "POST", "/projects/", managerToken, map[string]interface{}{
		"name":          "Pichavaram Restoration",
		"description":   "Mangrove replanting across degraded estuary plots",
		"location":      "Tamil Nadu",
		"ecosystemType": "mangrove",
		"area":          150,
	})
	require.Equal(t, 201, resp.StatusCode)
	projectID := body["projectId"].(string)
	project := body["project"].(map[string]interface{})
	assert.Equal(t, "registered", project["status"])
	assert.Equal(t, "0xstub", project["onChainTxHash"])

	// manager submits MRV evidence
	resp, body = env.request(t, "POST", "/mrv/", managerToken, map[string]interface{}{
		"projectId":        projectID,
		"satelliteData":    "s2-tile-43PGQ",
		"communityReports": "monthly patrol log",
	})
	require.Equal(t, 201, resp.StatusCode)
	mrvData := body["mrvData"].(map[string]interface{})
	mrvID := mrvData["id"].(string)
	assert.Equal(t, "pending", mrvData["status"])

	// verifier sees it pending
	resp, body = env.request(t, "GET", "/mrv/pending", verifierToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	pending := body["pendingMrv"].([]interface{})
	require.Len(t, pending, 1)

	// verifier approves; credit is issued
	resp, body = env.request(t, "POST", "/mrv/"+mrvID+"/approve", verifierToken, map[string]interface{}{
		"approved": true, "notes": "evidence checks out",
	})
	require.Equal(t, 200, resp.StatusCode)
	credit := body["credit"].(map[string]interface{})
	creditID := credit["id"].(string)
	assert.Equal(t, 450.5, credit["amount"])

	// a second decision on the same record is rejected
	resp, body = env.request(t, "POST", "/mrv/"+mrvID+"/approve", verifierToken, map[string]interface{}{
		"approved": false,
	})
	assert.Equal(t, 409, resp.StatusCode)
	assert.Equal(t, "MRV record has already been approved", body["error"])

	// buyer sees it on the marketplace
	resp, body = env.request(t, "GET", "/credits/available", buyerToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	available := body["availableCredits"].([]interface{})
	require.Len(t, available, 1)

	// buyer retires part of it directly
	resp, body = env.request(t, "POST", "/credits/retire", buyerToken, map[string]interface{}{
		"creditId": creditID, "amount": 100.5, "reason": "annual offset commitment",
	})
	require.Equal(t, 200, resp.StatusCode)
	retirement := body["retirement"].(map[string]interface{})
	assert.Equal(t, 100.5, retirement["amount"])

	resp, body = env.request(t, "GET", "/credits/retirements", buyerToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	history := body["retirements"].([]interface{})
	require.Len(t, history, 1)

	// the manager can no longer delete the approved project
	resp, _ = env.request(t, "DELETE", "/projects/"+projectID, managerToken, nil)
	assert.Equal(t, 409, resp.StatusCode)

	// aggregates reflect the lifecycle
	resp, body = env.request(t, "GET", "/public/stats", "", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 1.0, body["totalProjects"])
	assert.Equal(t, 1.0, body["approvedProjects"])
	assert.Equal(t, 450.5, body["creditsIssued"])
	assert.Equal(t, 100.5, body["creditsRetired"])
	assert.Equal(t, 0.0, body["pendingVerifications"])
}

func TestMLVerificationRoutes(t *testing.T) {
	env := setupRouterTest(t)
	managerToken := env.userToken(t, "manager@example.com", "Asha Nair", "project_manager")
	verifierToken := env.userToken(t, "verifier@nccr.gov.in", "Meera Iyer", "nccr_verifier")

	resp, body := env.request(t, "POST", "/projects/", managerToken, map[string]interface{}{
		"name":          "Pulicat Saltmarsh Belt",
		"description":   "Saltmarsh rewetting along the lagoon edge",
		"location":      "Andhra Pradesh",
		"ecosystemType": "saltmarsh",
		"area":          90,
	})
	require.Equal(t, 201, resp.StatusCode)
	projectID := body["projectId"].(string)

	// verifier-only
	resp, _ = env.request(t, "POST", "/ml/verify-project", managerToken, map[string]interface{}{
		"projectId": projectID,
	})
	assert.Equal(t, 403, resp.StatusCode)

	resp, body = env.request(t, "GET", "/ml/verification/"+projectID, verifierToken, nil)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "No ML verification found for this project", body["error"])

	resp, body = env.request(t, "POST", "/ml/verify-project", verifierToken, map[string]interface{}{
		"projectId": projectID,
	})
	require.Equal(t, 200, resp.StatusCode)
	verification := body["verification"].(map[string]interface{})
	assert.Equal(t, 0.92, verification["mlScore"])
	assert.Equal(t, "APPROVE", verification["recommendation"])

	resp, body = env.request(t, "GET", "/ml/verification/"+projectID, verifierToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	stored := body["verification"].(map[string]interface{})
	assert.Equal(t, projectID, stored["projectId"])
	assert.Equal(t, 0.92, stored["mlScore"])
}

func TestMRVUpload(t *testing.T) {
	env := setupRouterTest(t)
	managerToken := env.userToken(t, "manager@example.com", "Asha Nair", "project_manager")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("projectId", "any-project"))
	part, err := w.CreateFormFile("files", "drone-shot.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	part, err = w.CreateFormFile("files", "sensors.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("ts,salinity\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/mrv/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+managerToken)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Successfully uploaded 2 files", body["message"])
	files := body["files"].([]interface{})
	require.Len(t, files, 2)
	assert.Equal(t, "photo", files[0].(map[string]interface{})["category"])
	assert.Equal(t, "iot_data", files[1].(map[string]interface{})["category"])
}
