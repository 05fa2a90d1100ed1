package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"roadmaps-backend/application/services"
	"roadmaps-backend/domain/user"
	"roadmaps-backend/infrastructure/config"
	"roadmaps-backend/infrastructure/messaging/eventbridge"
	"roadmaps-backend/infrastructure/persistence/memory"
	"roadmaps-backend/pkg/auth"
	"roadmaps-backend/pkg/observability"
)

type apiFixture struct {
	handler    http.Handler
	userRepo   *memory.UserRepository
	generator  *auth.JWTGenerator
	adminToken string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	cfg := &config.Config{
		Environment: "test",
		JWTSecret:   "test-secret",
		JWTIssuer:   "roadmaps-backend",
		JWTAudience: "roadmaps-web",
		EnableCORS:  true,
	}

	roadmapRepo := memory.NewRoadmapRepository()
	userRepo := memory.NewUserRepository()
	metrics := observability.NewCollector("roadmaps")
	logger := zap.NewNop()
	bus := eventbridge.NopBus{}

	generator, err := auth.NewJWTGenerator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		Audience:  []string{cfg.JWTAudience},
	})
	require.NoError(t, err)

	router := NewRouter(
		cfg,
		services.NewRoadmapService(roadmapRepo, bus, metrics, logger),
		services.NewUserService(userRepo, roadmapRepo, metrics, logger),
		services.NewAuthService(userRepo, generator, bus, logger),
		metrics,
		logger,
	)
	handler, err := router.Setup()
	require.NoError(t, err)

	admin, err := user.New("Root", "root@example.com", "hash")
	require.NoError(t, err)
	admin.Admin = true
	require.NoError(t, userRepo.Save(context.Background(), admin))

	adminToken, err := generator.GenerateToken(admin.ID, admin.Email, true, time.Hour)
	require.NoError(t, err)

	return &apiFixture{
		handler:    handler,
		userRepo:   userRepo,
		generator:  generator,
		adminToken: adminToken,
	}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) createRoadmap(t *testing.T) map[string]interface{} {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/v1/roadmaps", f.adminToken, map[string]interface{}{
		"name":     "Go Backend",
		"nameSlug": "go-backend",
		"nodes": []map[string]interface{}{
			{
				"name": "Basics",
				"contents": []map[string]string{
					{"type": "video", "title": "Intro", "url": "https://example.com/intro"},
				},
			},
			{"name": "Concurrency"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var rm map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rm))
	return rm
}

func TestHealthEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/ready", "", nil).Code)
}

func TestRoadmapCRUD(t *testing.T) {
	f := newAPIFixture(t)
	rm := f.createRoadmap(t)
	id := rm["id"].(string)

	// Public reads need no token
	rec := f.do(t, http.MethodGet, "/api/v1/roadmaps/"+id, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/roadmaps/slug/go-backend", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/roadmaps", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/roadmaps/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/v1/roadmaps/"+id, f.adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/roadmaps/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoadmapWritesRequireAdmin(t *testing.T) {
	f := newAPIFixture(t)

	body := map[string]interface{}{
		"name":     "Go Backend",
		"nameSlug": "go-backend",
		"nodes":    []map[string]interface{}{{"name": "Basics"}},
	}

	rec := f.do(t, http.MethodPost, "/api/v1/roadmaps", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A signed-up user is not an admin
	rec = f.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var signup struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signup))

	rec = f.do(t, http.MethodPost, "/api/v1/roadmaps", signup.Token, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBatchEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	rm := f.createRoadmap(t)
	id := rm["id"].(string)

	rec := f.do(t, http.MethodPatch, "/api/v1/roadmaps/"+id, f.adminToken, map[string]interface{}{
		"newName":       "Go Backend 2026",
		"nodesToDelete": []string{"ghost"},
		"nodesToAdd":    []map[string]interface{}{{"name": "Deployment"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Roadmap struct {
			Name  string `json:"name"`
			Nodes []struct {
				ID string `json:"id"`
			} `json:"nodes"`
		} `json:"roadmap"`
		Result struct {
			Skipped []struct {
				Reason string `json:"reason"`
			} `json:"skipped"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "Go Backend 2026", resp.Roadmap.Name)
	assert.Len(t, resp.Roadmap.Nodes, 3)
	require.Len(t, resp.Result.Skipped, 1)
	assert.Equal(t, "node_not_found", resp.Result.Skipped[0].Reason)
}

func TestSignupLoginAndMe(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var signup struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signup))
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	// Duplicate email conflicts
	rec = f.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name":     "Imposter",
		"email":    "ada@example.com",
		"password": "another password",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, signup.User.ID, login.User.ID)

	rec = f.do(t, http.MethodGet, "/api/v1/users/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var me struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, signup.User.ID, me.ID)
	assert.Equal(t, "ada@example.com", me.Email)

	rec = f.do(t, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFavoriteAndSeenToggles(t *testing.T) {
	f := newAPIFixture(t)
	rm := f.createRoadmap(t)
	id := rm["id"].(string)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var signup struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signup))

	rec = f.do(t, http.MethodPost, "/api/v1/users/me/favorites/toggle", signup.Token, map[string]string{"roadmapId": id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var toggle struct {
		Active bool `json:"active"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &toggle))
	assert.True(t, toggle.Active)

	rec = f.do(t, http.MethodPost, "/api/v1/users/me/favorites/toggle", signup.Token, map[string]string{"roadmapId": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Find a content id on the seeded roadmap
	nodes := rm["nodes"].([]interface{})
	contents := nodes[0].(map[string]interface{})["contents"].([]interface{})
	contentID := contents[0].(map[string]interface{})["id"].(string)

	rec = f.do(t, http.MethodPost, "/api/v1/users/me/seen/toggle", signup.Token, map[string]string{"contentId": contentID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &toggle))
	assert.True(t, toggle.Active)

	rec = f.do(t, http.MethodGet, "/api/v1/users/me", signup.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me struct {
		FavoriteRoadmaps []string `json:"favoriteRoadmaps"`
		SeenContents     []struct {
			RoadmapID  string   `json:"roadmapId"`
			ContentIDs []string `json:"contentIds"`
		} `json:"seenContents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, []string{id}, me.FavoriteRoadmaps)
	require.Len(t, me.SeenContents, 1)
	assert.Equal(t, []string{contentID}, me.SeenContents[0].ContentIDs)
}

func TestDeleteEdgesEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	rm := f.createRoadmap(t)
	id := rm["id"].(string)

	nodes := rm["nodes"].([]interface{})
	src := nodes[0].(map[string]interface{})["id"].(string)
	dst := nodes[1].(map[string]interface{})["id"].(string)

	rec := f.do(t, http.MethodPatch, "/api/v1/roadmaps/"+id, f.adminToken, map[string]interface{}{
		"edgesToAdd": []map[string]string{{"source": src, "target": dst}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var patched struct {
		Result struct {
			AddedEdgeIDs []string `json:"addedEdgeIds"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &patched))
	require.Len(t, patched.Result.AddedEdgeIDs, 1)

	rec = f.do(t, http.MethodDelete, "/api/v1/roadmaps/"+id+"/edges", f.adminToken, map[string]interface{}{
		"edgeIds": patched.Result.AddedEdgeIDs,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Removed int `json:"removed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Removed)
}

func TestValidationErrors(t *testing.T) {
	f := newAPIFixture(t)

	// No nodes
	rec := f.do(t, http.MethodPost, "/api/v1/roadmaps", f.adminToken, map[string]interface{}{
		"name":     "Empty",
		"nameSlug": "empty",
		"nodes":    []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Bad content kind
	rec = f.do(t, http.MethodPost, "/api/v1/roadmaps", f.adminToken, map[string]interface{}{
		"name":     "Bad",
		"nameSlug": "bad",
		"nodes": []map[string]interface{}{
			{
				"name": "Node",
				"contents": []map[string]string{
					{"type": "podcast", "title": "Nope", "url": "https://example.com"},
				},
			},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed body
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
