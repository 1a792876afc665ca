package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	kycdomain "github.com/veripath/backend/internal/kyc"
	"github.com/veripath/backend/internal/models"
	"github.com/veripath/backend/internal/queue"
	kycsvc "github.com/veripath/backend/internal/services/kyc"
	"github.com/veripath/backend/internal/services/profile"
	"github.com/veripath/backend/internal/services/promo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MockEnqueuer is a mock implementation of queue.Enqueuer
type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) Enqueue(jobType queue.JobType, payload interface{}) (string, error) {
	args := m.Called(jobType, payload)
	return args.String(0), args.Error(1)
}

type testEnv struct {
	router   *gin.Engine
	profiles *profile.ProfileService
	promos   *promo.PromoCodeService
	enqueuer *MockEnqueuer
}

func setupTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.Relative{}, &models.PromoCode{}))

	profiles := profile.NewProfileService(db)
	promos := promo.NewPromoCodeService(db)
	policy := kycdomain.NewCountryPolicy([]string{"Wakanda"}, []string{"Wakanda"})
	enqueuer := new(MockEnqueuer)
	kycService := kycsvc.NewKYCService(profiles, policy, enqueuer)

	profileHandler := NewProfileHandler(profiles, promos)
	relativeHandler := NewRelativeHandler(profiles)
	kycHandler := NewKYCHandler(kycService)

	router := gin.New()
	router.POST("/api/profiles", profileHandler.CreateProfile)
	router.GET("/api/profiles", profileHandler.ListProfiles)
	router.GET("/api/profiles/:id", profileHandler.GetProfile)
	router.POST("/api/profiles/:id/occupation", profileHandler.AddOccupationData)
	router.POST("/api/profiles/:id/relatives", relativeHandler.CreateRelative)
	router.GET("/api/profiles/:id/relatives", relativeHandler.ListRelatives)
	router.POST("/api/webhooks/kyc/id-verification", kycHandler.HandleIDVerification)
	router.POST("/api/webhooks/kyc/address-verification", kycHandler.HandleAddressVerification)
	router.POST("/api/kyc/manual-check", kycHandler.HandleManualBackgroundCheck)
	router.GET("/api/kyc/manual-review", kycHandler.ManualReviewWorklist)

	return &testEnv{router: router, profiles: profiles, promos: promos, enqueuer: enqueuer}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createProfile(t *testing.T, country string) *models.Profile {
	p := &models.Profile{
		FirstName:   "Adwoa",
		LastName:    "Sarpong",
		Country:     country,
		Nationality: country,
		DateOfBirth: "1991-09-12",
		Email:       "adwoa.sarpong@example.com",
	}
	require.NoError(t, e.profiles.Create(p))
	return p
}

func webhookBody(profileID uuid.UUID, result string) gin.H {
	return gin.H{
		"user_id":         profileID,
		"verification_id": "idv-001",
		"result":          result,
		"timestamp":       time.Now().Format(time.RFC3339),
	}
}

func TestIDVerificationWebhook(t *testing.T) {
	env := setupTestEnv(t)
	p := env.createProfile(t, "Ruritania")

	w := env.do(t, http.MethodPost, "/api/webhooks/kyc/id-verification", webhookBody(p.ID, "success"))
	assert.Equal(t, http.StatusOK, w.Code)

	updated, err := env.profiles.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.KYCStatusIDVerified, updated.KYCStatus)
}

func TestIDVerificationWebhookMissingFields(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/webhooks/kyc/id-verification", gin.H{"result": "success"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIDVerificationWebhookInvalidResult(t *testing.T) {
	env := setupTestEnv(t)
	p := env.createProfile(t, "Ruritania")

	w := env.do(t, http.MethodPost, "/api/webhooks/kyc/id-verification", webhookBody(p.ID, "maybe"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIDVerificationWebhookUnknownProfile(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/webhooks/kyc/id-verification", webhookBody(uuid.New(), "success"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIDVerificationWebhookReplayConflicts(t *testing.T) {
	env := setupTestEnv(t)
	p := env.createProfile(t, "Ruritania")

	w := env.do(t, http.MethodPost, "/api/webhooks/kyc/id-verification", webhookBody(p.ID, "success"))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/webhooks/kyc/id-verification", webhookBody(p.ID, "success"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAddressVerificationWebhookForSkipCountry(t *testing.T) {
	env := setupTestEnv(t)
	p := env.createProfile(t, "Wakanda")

	env.enqueuer.On("Enqueue", queue.JobTypeBackgroundCheck, mock.Anything).
		Return(uuid.NewString(), nil).Once()
	w := env.do(t, http.MethodPost, "/api/webhooks/kyc/id-verification", webhookBody(p.ID, "success"))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/webhooks/kyc/address-verification", webhookBody(p.ID, "success"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestManualCheckWebhook(t *testing.T) {
	env := setupTestEnv(t)
	p := env.createProfile(t, "Ruritania")

	require.NoError(t, env.profiles.ApplyTransition(p.ID, models.KYCStatusPending, models.KYCStatusIDVerified, nil))
	require.NoError(t, env.profiles.ApplyTransition(p.ID, models.KYCStatusIDVerified, models.KYCStatusAddressVerified, nil))
	require.NoError(t, env.profiles.ApplyTransition(p.ID, models.KYCStatusAddressVerified, models.KYCStatusBackgroundCheckManualReview, nil))

	env.enqueuer.On("Enqueue", queue.JobTypeWelcomeEmail, mock.Anything).
		Return(uuid.NewString(), nil).Once()

	w := env.do(t, http.MethodPost, "/api/kyc/manual-check", gin.H{
		"user_id":      p.ID,
		"validator_id": "reviewer-7",
		"resolution":   "passed",
		"timestamp":    time.Now().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusOK, w.Code)

	updated, err := env.profiles.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.KYCStatusBackgroundCheckPassed, updated.KYCStatus)

	env.enqueuer.AssertExpectations(t)
}

func TestManualReviewWorklistEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	p := env.createProfile(t, "Ruritania")

	require.NoError(t, env.profiles.ApplyTransition(p.ID, models.KYCStatusPending, models.KYCStatusIDVerified, nil))
	require.NoError(t, env.profiles.ApplyTransition(p.ID, models.KYCStatusIDVerified, models.KYCStatusAddressVerified, nil))
	require.NoError(t, env.profiles.ApplyTransition(p.ID, models.KYCStatusAddressVerified, models.KYCStatusBackgroundCheckManualReview, nil))

	w := env.do(t, http.MethodGet, "/api/kyc/manual-review", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Profiles []models.Profile `json:"profiles"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Profiles, 1)
	assert.Equal(t, p.ID, resp.Profiles[0].ID)
}

func TestCreateProfileEndpoint(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/profiles", gin.H{
		"first_name":    "Adwoa",
		"last_name":     "Sarpong",
		"country":       "Ruritania",
		"nationality":   "Ruritania",
		"date_of_birth": "1991-09-12",
		"email":         "adwoa.sarpong@example.com",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.KYCStatusPending, created.KYCStatus)
	assert.NotEqual(t, uuid.Nil, created.ID)
}

func TestCreateProfileEndpointValidation(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/profiles", gin.H{"first_name": "Adwoa"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProfileEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	p := env.createProfile(t, "Wakanda")

	w := env.do(t, http.MethodGet, fmt.Sprintf("/api/profiles/%s", p.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Profile   models.Profile    `json:"profile"`
		PromoCode *models.PromoCode `json:"promo_code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, p.ID, resp.Profile.ID)
	assert.Nil(t, resp.PromoCode)

	// Once a promo code exists it rides along in the response
	_, err := env.promos.Create(p.ID)
	require.NoError(t, err)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/profiles/%s", p.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.PromoCode)
	assert.Len(t, resp.PromoCode.Code, 40)
}

func TestGetProfileEndpointNotFound(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, fmt.Sprintf("/api/profiles/%s", uuid.New()), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/profiles/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOccupationEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	p := env.createProfile(t, "Ruritania")

	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/profiles/%s/occupation", p.ID), gin.H{
		"occupation":       "Harbour Master",
		"employer":         "Port Authority",
		"source_of_income": "salary",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/profiles/%s/occupation", p.ID), gin.H{
		"occupation":       "Harbour Master",
		"employer":         "Port Authority",
		"source_of_income": "gambling",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRelativesEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	p := env.createProfile(t, "Ruritania")

	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/profiles/%s/relatives", p.ID), gin.H{
		"first_name":          "Kojo",
		"last_name":           "Sarpong",
		"relationship":        "father",
		"political_influence": true,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/profiles/%s/relatives", p.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Relatives []models.Relative `json:"relatives"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Relatives, 1)
	assert.True(t, resp.Relatives[0].PoliticalInfluence)
}
