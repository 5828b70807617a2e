package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/worktime-api/internal/models"
	"github.com/noah-isme/worktime-api/internal/repository"
	"github.com/noah-isme/worktime-api/internal/service"
	"github.com/noah-isme/worktime-api/pkg/kvstore"
)

func newAccountHandlerForTest() *AccountHandler {
	svc := service.NewAccountService(repository.NewAccountRepository(kvstore.NewMemoryStore()), nil, zap.NewNop())
	return NewAccountHandler(svc, nil)
}

func decodeAccount(t *testing.T, w *httptest.ResponseRecorder) models.Account {
	t.Helper()
	var body struct {
		Data models.Account `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data
}

func TestAccountHandlerLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newAccountHandlerForTest()
	params := gin.Params{{Key: "role", Value: "employee"}, {Key: "id", Value: "E1"}}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = params
	c.Request, _ = http.NewRequest(http.MethodGet, "/admin/accounts/employee/E1", nil)
	h.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	acc := decodeAccount(t, w)
	assert.Equal(t, models.AccountActive, acc.Status)
	assert.Equal(t, models.AccountRoleUser, acc.Role)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Params = params
	c.Request, _ = http.NewRequest(http.MethodPut, "/admin/accounts/employee/E1", bytes.NewBufferString(`{"status":"Inactive"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Set(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.AccountInactive, decodeAccount(t, w).Status)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Params = params
	c.Request, _ = http.NewRequest(http.MethodPost, "/admin/accounts/employee/E1/toggle", nil)
	h.Toggle(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.AccountActive, decodeAccount(t, w).Status)
}

func TestAccountHandlerValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newAccountHandlerForTest()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "role", Value: "guest"}, {Key: "id", Value: "E1"}}
	c.Request, _ = http.NewRequest(http.MethodGet, "/admin/accounts/guest/E1", nil)
	h.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "role", Value: "user"}, {Key: "id", Value: "E1"}}
	c.Request, _ = http.NewRequest(http.MethodPut, "/admin/accounts/user/E1", bytes.NewBufferString(`{"status":"Suspended"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Set(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
