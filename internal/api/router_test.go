package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"greendrake/propdesk/internal/api"
	"greendrake/propdesk/internal/config"
	"greendrake/propdesk/internal/models"
	"greendrake/propdesk/internal/services"
)

// MockPropertyService implements services.IPropertyService
type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) CreateProperty(ctx context.Context, ownerID string, input services.PropertyInput, files []services.ImageUpload) (*models.Property, error) {
	args := m.Called(ctx, ownerID, input, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) ListProperties(ctx context.Context, ownerID string, page, limit int) (*models.PropertyPage, error) {
	args := m.Called(ctx, ownerID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PropertyPage), args.Error(1)
}

func (m *MockPropertyService) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) AddNote(ctx context.Context, id, noteType, text, authorID string) (*models.Property, error) {
	args := m.Called(ctx, id, noteType, text, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) SetImageCaption(ctx context.Context, id, imageKey, caption string) (*models.Property, error) {
	args := m.Called(ctx, id, imageKey, caption)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{MaxUploadMB: 1, PublicBaseURL: "http://localhost:8080"}
}

func TestRouter_Ping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := api.SetupRouter(context.Background(), testConfig(), new(MockPropertyService), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/ping", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_Healthz(t *testing.T) {
	gin.SetMode(gin.TestMode)

	healthy := api.SetupRouter(context.Background(), testConfig(), new(MockPropertyService), func(context.Context) error { return nil })
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	healthy.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	down := api.SetupRouter(context.Background(), testConfig(), new(MockPropertyService), func(context.Context) error {
		return errors.New("server selection timeout")
	})
	w = httptest.NewRecorder()
	down.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_CaptionRouteMatchesEncodedKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(MockPropertyService)
	r := api.SetupRouter(context.Background(), testConfig(), svc, nil)

	oid := primitive.NewObjectID()
	key := "owner-1/" + oid.Hex() + "/images/1700000000000-2.png"
	caption := "Kitchen"
	svc.On("SetImageCaption", mock.Anything, oid.Hex(), key, caption).
		Return(&models.Property{Base: models.Base{ID: oid}, Images: []models.Image{{Key: key, Caption: &caption}}}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch,
		"/api/properties/"+oid.Hex()+"/images/"+url.PathEscape(key)+"/caption",
		strings.NewReader(`{"caption":"Kitchen"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestRouter_UnknownRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := api.SetupRouter(context.Background(), testConfig(), new(MockPropertyService), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/nope", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
}
