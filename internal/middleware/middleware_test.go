package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_store/internal/apperr"
	"game_store/internal/domain"
	"game_store/internal/policy"
	"game_store/internal/utils"
)

const secret = "test-secret"

type revokedSet map[string]bool

func (r revokedSet) IsRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, errors.New("empty jti")
	}
	return r[jti], nil
}

type brokenStore struct{}

// directory is an in-memory account store keyed by id
type directory map[uint]domain.Role

func (d directory) GetByID(_ context.Context, id uint) (*domain.Account, error) {
	role, ok := d[id]
	if !ok {
		return nil, apperr.NotFound("account not found")
	}
	return &domain.Account{ID: id, Role: role}, nil
}

type brokenDirectory struct{}

func (brokenDirectory) GetByID(context.Context, uint) (*domain.Account, error) {
	return nil, apperr.Internal(errors.New("db down"), "")
}

var everyone = directory{1: domain.RolePlayer, 2: domain.RolePublisher, 3: domain.RoleAdmin, 7: domain.RolePlayer}

func (brokenStore) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func init() {
	gin.SetMode(gin.TestMode)
}

func token(t *testing.T, id uint, role domain.Role) (string, *utils.Claims) {
	t.Helper()
	tok, err := utils.GenerateJWT(domain.Account{ID: id, Email: "u@example.com", Role: role}, secret, time.Hour)
	require.NoError(t, err)
	claims, err := utils.ParseJWT(tok, secret)
	require.NoError(t, err)
	return tok, claims
}

func newEngine(accounts AccountLookup, checker RevocationChecker, gates ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	chain := append([]gin.HandlerFunc{JWTAuthMiddleware(secret, accounts, checker)}, gates...)
	chain = append(chain, func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		jti, exp := TokenFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": p.AccountID, "role": p.Role, "jti": jti, "exp": exp.Unix()})
	})
	r.GET("/x", chain...)
	return r
}

func do(r http.Handler, tok string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorType(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error.Message)
	return body.Error.Type
}

func TestJWTAuthMiddleware(t *testing.T) {
	tok, claims := token(t, 7, domain.RolePlayer)
	r := newEngine(everyone, nil)

	w := do(r, tok)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 7, body["id"])
	assert.Equal(t, "Player", body["role"])
	assert.Equal(t, claims.ID, body["jti"])
	assert.EqualValues(t, claims.ExpiresAt.Unix(), body["exp"])

	for name, header := range map[string]string{
		"missing": "",
		"garbage": "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			w := do(r, header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Unauthorized", errorType(t, w))
		})
	}

	other, err := utils.GenerateJWT(domain.Account{ID: 7, Role: domain.RolePlayer}, "other-secret", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, other).Code)
}

func TestJWTAuthMiddlewareRevocation(t *testing.T) {
	tok, claims := token(t, 3, domain.RoleAdmin)

	assert.Equal(t, http.StatusOK, do(newEngine(everyone, revokedSet{}), tok).Code)

	w := do(newEngine(everyone, revokedSet{claims.ID: true}), tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", errorType(t, w))

	w = do(newEngine(everyone, brokenStore{}), tok)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal", errorType(t, w))
	assert.NotContains(t, w.Body.String(), "redis down")
}

func TestJWTAuthMiddlewareUsesStoredRole(t *testing.T) {
	tok, _ := token(t, 9, domain.RoleAdmin)
	accounts := directory{9: domain.RoleAdmin}
	r := newEngine(accounts, nil, AdminOnlyMiddleware())
	assert.Equal(t, http.StatusOK, do(r, tok).Code)

	accounts[9] = domain.RolePlayer
	w := do(r, tok)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden", errorType(t, w))

	delete(accounts, 9)
	w = do(r, tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", errorType(t, w))

	w = do(newEngine(brokenDirectory{}, nil), tok)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestRequireAction(t *testing.T) {
	r := newEngine(everyone, nil, RequireAction(policy.GameCreate))

	player, _ := token(t, 1, domain.RolePlayer)
	w := do(r, player)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden", errorType(t, w))

	publisher, _ := token(t, 2, domain.RolePublisher)
	assert.Equal(t, http.StatusOK, do(r, publisher).Code)

	admin, _ := token(t, 3, domain.RoleAdmin)
	assert.Equal(t, http.StatusOK, do(r, admin).Code)
}

func TestRequireActionWithoutPrincipal(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireAction(policy.CartUse), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := do(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnlyMiddleware(t *testing.T) {
	r := newEngine(everyone, nil, AdminOnlyMiddleware())

	publisher, _ := token(t, 2, domain.RolePublisher)
	assert.Equal(t, http.StatusForbidden, do(r, publisher).Code)

	admin, _ := token(t, 3, domain.RoleAdmin)
	assert.Equal(t, http.StatusOK, do(r, admin).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), AccessLog())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFrom(c)) })

	w := do(r, "")
	generated := w.Header().Get("X-Request-ID")
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "abc-123", w.Body.String())
}
