package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitroom/splitroom-api/internal/infrastructure/repository/memory"
)

func newIdempotentRouter(calls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/rooms/:id/pay",
		Idempotency(IdempotencyConfig{Repo: memory.NewStore().Idempotency()}),
		func(c *gin.Context) {
			*calls++
			c.JSON(200, gin.H{"status": "ok", "call": *calls})
		})
	return router
}

func post(router *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/rooms/tok-1/pay", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	var calls int
	router := newIdempotentRouter(&calls)

	first := post(router, "key-1")
	require.Equal(t, 200, first.Code)

	second := post(router, "key-1")
	require.Equal(t, 200, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)
}

func TestIdempotency_DistinctKeysExecute(t *testing.T) {
	var calls int
	router := newIdempotentRouter(&calls)

	post(router, "key-1")
	post(router, "key-2")
	assert.Equal(t, 2, calls)
}

func TestIdempotency_NoKeyExecutesEveryTime(t *testing.T) {
	var calls int
	router := newIdempotentRouter(&calls)

	post(router, "")
	post(router, "")
	assert.Equal(t, 2, calls)
}

func TestIdempotency_FailuresAreNotCached(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var calls int
	router := gin.New()
	router.POST("/rooms/:id/pay",
		Idempotency(IdempotencyConfig{Repo: memory.NewStore().Idempotency()}),
		func(c *gin.Context) {
			calls++
			if calls == 1 {
				c.JSON(http.StatusConflict, gin.H{"detail": "overpayment"})
				return
			}
			c.JSON(200, gin.H{"status": "ok"})
		})

	first := post(router, "key-1")
	assert.Equal(t, 409, first.Code)

	// The retry with the same key runs for real and can succeed.
	second := post(router, "key-1")
	assert.Equal(t, 200, second.Code)
	assert.Empty(t, second.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, 2, calls)
}
