package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_store/internal/db/dbtest"
	"game_store/internal/domain"
	"game_store/internal/service"
	"game_store/internal/utils"
)

const testSecret = "api-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	t      *testing.T
	mr     *miniredis.Miniredis
	svc    *service.Services
	router *gin.Engine
	seq    int
}

func newHarness(t *testing.T) *harness {
	gdb := dbtest.Open(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	svc := service.New(gdb, service.WithLocker(utils.NewRedisLocker(rdb, "lock:"), time.Second))
	r := SetupRouter(Deps{
		DB:        gdb,
		Redis:     rdb,
		Services:  svc,
		Tokens:    utils.NewRevocationList(rdb),
		JWTSecret: testSecret,
		JWTTTL:    time.Hour,
	})
	return &harness{t: t, mr: mr, svc: svc, router: r}
}

// login creates an account with role and returns a bearer token for it
func (h *harness) login(role domain.Role) (string, *domain.Account) {
	h.t.Helper()
	h.seq++
	name := string(role) + string(rune('a'+h.seq))
	acc, err := h.svc.Accounts.CreateWithRole(context.Background(), service.RegisterInput{
		Username: name + "x",
		Email:    name + "@example.com",
		Password: "Passw0rd!",
	}, role)
	require.NoError(h.t, err)
	tok, err := utils.GenerateJWT(*acc, testSecret, time.Hour)
	require.NoError(h.t, err)
	return tok, acc
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, kind string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	body := decode[errorBody](t, w)
	assert.Equal(t, kind, body.Error.Type)
	assert.NotEmpty(t, body.Error.Message)
}

func TestRegisterLoginLogout(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/store/auth/register", "", gin.H{
		"username": "newgamer",
		"email":    "NewGamer@example.com",
		"password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reg := decode[AuthResponse](t, w)
	assert.Equal(t, domain.RolePlayer, reg.Role)
	assert.Equal(t, "newgamer@example.com", reg.Email)
	assert.NotEmpty(t, reg.Token)

	w = h.do(http.MethodPost, "/store/auth/register", "", gin.H{
		"username": "othergamer",
		"email":    "newgamer@example.com",
		"password": "Secret123",
	})
	assertError(t, w, http.StatusConflict, "Conflict")

	w = h.do(http.MethodPost, "/store/auth/login", "", gin.H{"email": "newgamer@example.com", "password": "wrong"})
	assertError(t, w, http.StatusUnauthorized, "Unauthorized")

	w = h.do(http.MethodPost, "/store/auth/login", "", gin.H{"email": "newgamer@example.com", "password": "Secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	tok := decode[AuthResponse](t, w).Token

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/store/cart", tok, nil).Code)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodPost, "/store/auth/logout", tok, nil).Code)
	assertError(t, h.do(http.MethodGet, "/store/cart", tok, nil), http.StatusUnauthorized, "Unauthorized")

	// The registration token is a different jti and stays valid
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/store/cart", reg.Token, nil).Code)
}

func TestRegisterRejectsBadBody(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodPost, "/store/auth/register", "", gin.H{"username": "x", "email": "not-an-email", "password": "short"})
	assertError(t, w, http.StatusBadRequest, "InvalidRequest")

	w = h.do(http.MethodPost, "/store/auth/register", "", gin.H{"username": "weakling", "email": "weak@example.com", "password": "alllowercase"})
	assertError(t, w, http.StatusBadRequest, "InvalidRequest")
}

func TestErrorResponses(t *testing.T) {
	h := newHarness(t)
	player, _ := h.login(domain.RolePlayer)

	assertError(t, h.do(http.MethodGet, "/store/games/999", "", nil), http.StatusNotFound, "NotFound")
	assertError(t, h.do(http.MethodGet, "/store/games/abc", "", nil), http.StatusBadRequest, "InvalidRequest")
	assertError(t, h.do(http.MethodGet, "/store/cart", "", nil), http.StatusUnauthorized, "Unauthorized")
	assertError(t, h.do(http.MethodGet, "/store/cart", "Bearer-less", nil), http.StatusUnauthorized, "Unauthorized")
	assertError(t, h.do(http.MethodPost, "/store/games", player, gin.H{"title": "Nope"}), http.StatusForbidden, "Forbidden")
	assertError(t, h.do(http.MethodGet, "/store/users", player, nil), http.StatusForbidden, "Forbidden")
	assertError(t, h.do(http.MethodGet, "/store/games?minPrice=cheap", "", nil), http.StatusBadRequest, "InvalidRequest")
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{"database": "ok", "redis": "ok"}, decode[map[string]string](t, w))

	h.mr.Close()
	w = h.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unavailable", decode[map[string]string](t, w)["redis"])
}

func TestLogoutRouteNeedsTokenStore(t *testing.T) {
	gdb := dbtest.Open(t)
	r := SetupRouter(Deps{DB: gdb, Services: service.New(gdb), JWTSecret: testSecret, JWTTTL: time.Hour})

	req := httptest.NewRequest(http.MethodPost, "/store/auth/logout", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoleChangesApplyToIssuedTokens(t *testing.T) {
	h := newHarness(t)
	admin, _ := h.login(domain.RoleAdmin)
	other, otherAcc := h.login(domain.RoleAdmin)
	path := fmt.Sprintf("/store/users/%d", otherAcc.ID)

	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/store/analytics", other, nil).Code)

	w := h.do(http.MethodPatch, path+"/role", admin, gin.H{"role": "Player"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assertError(t, h.do(http.MethodGet, "/store/analytics", other, nil), http.StatusForbidden, "Forbidden")
	assertError(t, h.do(http.MethodGet, "/store/users", other, nil), http.StatusForbidden, "Forbidden")
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/store/cart", other, nil).Code)

	require.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, path, admin, nil).Code)
	assertError(t, h.do(http.MethodGet, "/store/cart", other, nil), http.StatusUnauthorized, "Unauthorized")
	assertError(t, h.do(http.MethodGet, "/store/users", other, nil), http.StatusUnauthorized, "Unauthorized")
}

func TestUpdateUserRejectsBadEmail(t *testing.T) {
	h := newHarness(t)
	player, acc := h.login(domain.RolePlayer)
	path := fmt.Sprintf("/store/users/%d", acc.ID)

	assertError(t, h.do(http.MethodPut, path, player, gin.H{"email": "not-an-email"}), http.StatusBadRequest, "InvalidRequest")

	w := h.do(http.MethodGet, path, player, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, acc.Email, decode[UserResponse](t, w).Email)

	w = h.do(http.MethodPut, path, player, gin.H{"email": "Fresh@Example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "fresh@example.com", decode[UserResponse](t, w).Email)
}
