package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/service"
	"github.com/platefeed/backend/internal/testhelpers"
)

// testEnv wires the handlers onto a bare engine against an in-memory
// database, mirroring the production route layout.
type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.NewTestDB(t)
	media := testhelpers.NewFakeMediaStore()

	auth := service.NewAuthService(db, "test-secret")
	recipes := service.NewRecipeService(db, media, false)
	markers := service.NewMarkerService(db, media)
	cart := service.NewCartService(db)
	follows := service.NewFollowService(db, media)
	catalog := service.NewCatalogService(db)

	router := gin.New()
	v1 := router.Group("/api/v1")
	NewAuthHandler(auth).RegisterRoutes(v1)
	NewUserHandler(auth, follows).RegisterRoutes(v1)
	NewCatalogHandler(catalog).RegisterRoutes(v1)
	NewRecipeHandler(recipes, markers, cart, auth).RegisterRoutes(v1)

	return &testEnv{router: router, db: db, auth: auth}
}

// registerUser creates an account through the API and returns its id and a
// bearer token.
func (e *testEnv) registerUser(t *testing.T, email, username string) (uuid.UUID, string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/users", gin.H{
		"email":      email,
		"username":   username,
		"first_name": "Test",
		"last_name":  "User",
		"password":   "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	claims, err := e.auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	return claims.UserID, resp.Token
}

// do performs a request against the test router. A non-nil body is JSON
// encoded; a non-empty token becomes a bearer header.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}
