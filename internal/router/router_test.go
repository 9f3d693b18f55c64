package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bluecarbon/internal/auth"
	"bluecarbon/internal/config"
	"bluecarbon/internal/handler"
	"bluecarbon/internal/model"
	"bluecarbon/internal/repository"
	"bluecarbon/internal/router"
	"bluecarbon/internal/service"
)

const testSecret = "test-secret"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// In-memory repositories backing the end-to-end tests.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

var _ repository.UserRepository = (*memUserRepo)(nil)

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*model.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.Username] = user
	return nil
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type memPhotoRepo struct {
	mu     sync.Mutex
	photos map[uuid.UUID]*model.Photo
}

var _ repository.PhotoRepository = (*memPhotoRepo)(nil)

func newMemPhotoRepo() *memPhotoRepo {
	return &memPhotoRepo{photos: make(map[uuid.UUID]*model.Photo)}
}

func (r *memPhotoRepo) Create(_ context.Context, photo *model.Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}
	if photo.UploadedAt.IsZero() {
		photo.UploadedAt = time.Now()
	}
	stored := *photo
	r.photos[photo.ID] = &stored
	return nil
}

func (r *memPhotoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.photos[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memPhotoRepo) FindMetaByID(ctx context.Context, id uuid.UUID) (*model.Photo, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Content = nil
	return p, nil
}

func (r *memPhotoRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Photo
	for _, p := range r.photos {
		if p.OwnerID == ownerID {
			cp := *p
			cp.Content = nil
			out = append(out, cp)
		}
	}
	return out, nil
}

func (r *memPhotoRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.photos, id)
	return nil
}

type memProjectRepo struct {
	mu       sync.Mutex
	projects []*model.Project
}

var _ repository.ProjectRepository = (*memProjectRepo)(nil)

func (r *memProjectRepo) Create(_ context.Context, project *model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	cp := *project
	r.projects = append(r.projects, &cp)
	return nil
}

func (r *memProjectRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.projects {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memProjectRepo) ListListed(_ context.Context) ([]model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Project
	for _, p := range r.projects {
		switch p.Status {
		case model.StatusVerified, model.StatusApproved, model.StatusActive:
			out = append(out, *p)
		}
	}
	return out, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          testSecret,
		FrontendOrigin:     "http://localhost:8080",
		Env:                "development",
		UploadMaxFiles:     10,
		UploadMaxFileBytes: 10 << 20,
	}
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	return newTestServerWithConfig(t, testConfig())
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config) *echo.Echo {
	t.Helper()

	userRepo := newMemUserRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	for username, role := range map[string]model.Role{
		"alice":  model.RoleCommunity,
		"bob":    model.RoleCommunity,
		"gaurav": model.RoleGovernment,
	} {
		require.NoError(t, userRepo.Create(context.Background(), &model.User{
			Username:     username,
			PasswordHash: string(hash),
			Role:         role,
		}))
	}

	projectRepo := &memProjectRepo{}
	require.NoError(t, projectRepo.Create(context.Background(), &model.Project{
		Title:       "Sundarbans Mangrove Restoration",
		ProjectType: model.ProjectBlueCarbon,
		Status:      model.StatusActive,
	}))

	jwtService := auth.NewJWTService(cfg.JWTSecret)
	authService := service.NewAuthService(userRepo, jwtService)
	photoService := service.NewPhotoService(newMemPhotoRepo(), nil, service.UploadLimits{
		MaxFiles:     cfg.UploadMaxFiles,
		MaxFileBytes: cfg.UploadMaxFileBytes,
	})
	registryService := service.NewRegistryService(projectRepo, nil)

	e := echo.New()
	router.Register(
		e,
		cfg,
		jwtService,
		handler.NewAuthHandler(authService),
		handler.NewRegistryHandler(registryService),
		handler.NewPhotoHandler(photoService),
	)
	return e
}

func doJSON(e *echo.Echo, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, e *echo.Echo, username, password string) (token string, role string) {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	return resp["token"], resp["role"]
}

func uploadPhotos(e *echo.Echo, token string, files map[string][]byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		part, _ := w.CreateFormFile("photos", name)
		_, _ = part.Write(content)
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload/photos", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestLoginAndScopedPhotoList(t *testing.T) {
	e := newTestServer(t)

	aliceToken, role := login(t, e, "alice", "secret123")
	assert.Equal(t, "community", role)

	rec := uploadPhotos(e, aliceToken, map[string][]byte{"mangrove.png": pngBytes})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Alice sees her photo.
	rec = doJSON(e, http.MethodGet, "/api/upload/photos", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listResp struct {
		Photos []map[string]interface{} `json:"photos"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	assert.Len(t, listResp.Photos, 1)

	// Bob sees none of Alice's photos.
	bobToken, _ := login(t, e, "bob", "secret123")
	rec = doJSON(e, http.MethodGet, "/api/upload/photos", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	assert.Empty(t, listResp.Photos)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := newTestServer(t)

	// Wrong password and unknown user produce the same response.
	recWrong := doJSON(e, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	recGhost := doJSON(e, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "ghost", "password": "whatever",
	})
	assert.Equal(t, http.StatusBadRequest, recWrong.Code)
	assert.Equal(t, http.StatusBadRequest, recGhost.Code)
	assert.JSONEq(t, recWrong.Body.String(), recGhost.Body.String())
}

func TestRegistryRoleGate(t *testing.T) {
	e := newTestServer(t)

	communityToken, _ := login(t, e, "alice", "secret123")
	rec := doJSON(e, http.MethodGet, "/api/registry", communityToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")

	governmentToken, _ := login(t, e, "gaurav", "secret123")
	rec = doJSON(e, http.MethodGet, "/api/registry", governmentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Sundarbans")
}

func TestProtectedRoutesRejectMissingAndExpiredTokens(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/api/upload/photos", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHENTICATED")

	// Correctly signed but expired.
	claims := &auth.Claims{
		UserID: uuid.New(),
		Role:   model.RoleCommunity,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	rec = doJSON(e, http.MethodGet, "/api/upload/photos", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
}

func TestUploadValidation(t *testing.T) {
	e := newTestServer(t)
	token, _ := login(t, e, "alice", "secret123")

	// Eleven files exceed the per-request limit.
	tooMany := make(map[string][]byte, 11)
	for i := 0; i < 11; i++ {
		tooMany[fmt.Sprintf("p%d.png", i)] = pngBytes
	}
	rec := uploadPhotos(e, token, tooMany)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")

	// A non-image file is rejected by content sniffing.
	rec = uploadPhotos(e, token, map[string][]byte{"report.png": []byte("plain text, not an image")})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")

	// An empty batch is rejected.
	rec = uploadPhotos(e, token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadBodyCappedUpFront(t *testing.T) {
	cfg := testConfig()
	cfg.UploadMaxFiles = 2
	cfg.UploadMaxFileBytes = 1024
	e := newTestServerWithConfig(t, cfg)
	token, _ := login(t, e, "alice", "secret123")

	// A body far beyond the configured cap is refused before the multipart
	// payload is processed.
	rec := uploadPhotos(e, token, map[string][]byte{
		"flood.png": append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, 256<<10)...),
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	// Within the body cap, the configured per-file limit still applies.
	rec = uploadPhotos(e, token, map[string][]byte{
		"big.png": append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, 2048)...),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")

	// As does the configured file count limit.
	rec = uploadPhotos(e, token, map[string][]byte{
		"a.png": pngBytes, "b.png": pngBytes, "c.png": pngBytes,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestDeleteOwnershipGate(t *testing.T) {
	e := newTestServer(t)

	aliceToken, _ := login(t, e, "alice", "secret123")
	rec := uploadPhotos(e, aliceToken, map[string][]byte{"mangrove.png": pngBytes})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var uploadResp struct {
		Photos []struct {
			ID string `json:"id"`
		} `json:"photos"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploadResp))
	require.Len(t, uploadResp.Photos, 1)
	photoID := uploadResp.Photos[0].ID

	// The photo is publicly fetchable by id.
	rec = doJSON(e, http.MethodGet, "/api/upload/photos/"+photoID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))

	// Bob's valid token cannot delete Alice's photo.
	bobToken, _ := login(t, e, "bob", "secret123")
	rec = doJSON(e, http.MethodDelete, "/api/upload/photos/"+photoID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")

	// Alice deletes her own photo.
	rec = doJSON(e, http.MethodDelete, "/api/upload/photos/"+photoID, aliceToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// A subsequent fetch 404s.
	rec = doJSON(e, http.MethodGet, "/api/upload/photos/"+photoID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Malformed ids are rejected before lookup.
	rec = doJSON(e, http.MethodDelete, "/api/upload/photos/not-a-uuid", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_ID")
}

func TestRegisterEndpoint(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "nisha", "password": "secret123", "role": "investor",
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Duplicate usernames conflict.
	rec = doJSON(e, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "nisha", "password": "secret123", "role": "investor",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Unknown roles fail request validation.
	rec = doJSON(e, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "root", "password": "secret123", "role": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The new account can log in immediately.
	token, role := login(t, e, "nisha", "secret123")
	assert.NotEmpty(t, token)
	assert.Equal(t, "investor", role)
}

func TestProjectSubmission(t *testing.T) {
	e := newTestServer(t)
	token, _ := login(t, e, "alice", "secret123")

	rec := doJSON(e, http.MethodPost, "/api/registry/projects", token, map[string]interface{}{
		"title":         "Kelp Highway",
		"location":      "Karwar, Karnataka",
		"area_hectares": 80,
		"project_type":  "blue-carbon",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)

	// Pending submissions do not show up in the registry listing.
	governmentToken, _ := login(t, e, "gaurav", "secret123")
	rec = doJSON(e, http.MethodGet, "/api/registry", governmentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Kelp Highway")
}
