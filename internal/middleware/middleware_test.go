package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/learner-hub-api/internal/models"
	appErrors "github.com/noah-isme/learner-hub-api/pkg/errors"
)

type tokenStub struct {
	claims *models.JWTClaims
	err    error
	seen   string
}

func (s *tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	s.seen = token
	return s.claims, s.err
}

type auditStub struct {
	logs []*models.AuditLog
}

func (s *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

type observerStub struct {
	method string
	path   string
	status int
}

func (s *observerStub) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	s.method, s.path, s.status = method, path, status
}

func serve(router *gin.Engine, method, target, auth string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := &tokenStub{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleIQA}}
	router := gin.New()
	router.GET("/", JWT(tokens), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/", "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/", "Bearer   ").Code)
	assert.Empty(t, tokens.seen)
}

func TestJWTStoresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := &tokenStub{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleIQA}}
	router := gin.New()
	var got *models.JWTClaims
	router.GET("/", JWT(tokens), func(c *gin.Context) {
		got = Claims(c)
		c.Status(http.StatusNoContent)
	})

	w := serve(router, http.MethodGet, "/", "bearer abc.def")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "abc.def", tokens.seen)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)
}

func TestJWTPropagatesValidatorError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := &tokenStub{err: appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")}
	router := gin.New()
	router.GET("/", JWT(tokens), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/", "Bearer x").Code)
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	withRole := func(role models.UserRole) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set(ContextUserKey, &models.JWTClaims{UserID: "u", Role: role})
			c.Next()
		}
	}
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	router := gin.New()
	router.GET("/admin-as-admin", withRole(models.RoleAdmin), RequireRoles(models.RoleAdmin), ok)
	router.GET("/admin-as-iqa", withRole(models.RoleIQA), RequireRoles(models.RoleAdmin), ok)
	router.GET("/any", withRole(models.RoleLearner), RequireAuthenticated(), ok)
	router.GET("/anonymous", RequireRoles(models.RoleAdmin), ok)
	router.GET("/unknown-role", withRole("GUEST"), RequireAuthenticated(), ok)

	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodGet, "/admin-as-admin", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/admin-as-iqa", "").Code)
	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodGet, "/any", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/anonymous", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/unknown-role", "").Code)
}

func TestAuditRecordsSuccessfulMutationsOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &auditStub{}
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
		c.Next()
	})
	router.Use(Audit(repo, "session-type", nil))
	router.GET("/items", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.DELETE("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.POST("/items", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	serve(router, http.MethodGet, "/items", "")
	serve(router, http.MethodPost, "/items", "")
	serve(router, http.MethodDelete, "/items/st-9", "")

	require.Len(t, repo.logs, 1)
	entry := repo.logs[0]
	assert.Equal(t, "HTTP_DELETE", entry.Action)
	assert.Equal(t, "session-type", entry.Resource)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "st-9", *entry.ResourceID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "admin-1", *entry.UserID)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &observerStub{}
	router := gin.New()
	router.Use(Metrics(observer))
	router.GET("/sample-plan/:id/learners", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, http.MethodGet, "/sample-plan/p-1/learners", "")
	assert.Equal(t, "/sample-plan/:id/learners", observer.path)
	assert.Equal(t, http.StatusOK, observer.status)

	serve(router, http.MethodGet, "/nope", "")
	assert.Equal(t, "unmatched", observer.path)
	assert.Equal(t, http.StatusNotFound, observer.status)
}

func TestResponseMetaCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(WithResponseMeta())
	var meta map[string]interface{}
	router.GET("/", func(c *gin.Context) {
		SetCacheHit(c, "session-types", true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	w := serve(router, http.MethodGet, "/", "")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	require.NotNil(t, meta)
	assert.Equal(t, true, meta["cache_hit"])
	assert.Equal(t, "session-types", meta["cache_tag"])
	_, hasTiming := meta["processing_time_ms"]
	assert.True(t, hasTiming)
}
