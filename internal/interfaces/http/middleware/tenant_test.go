package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/erp/buildledger/internal/infrastructure/logger"
	"github.com/erp/buildledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTenantValidator struct {
	codes map[uuid.UUID]string
	err   map[uuid.UUID]error
	calls int
}

func (s *stubTenantValidator) ValidateTenant(_ context.Context, id uuid.UUID) (string, error) {
	s.calls++
	if err, ok := s.err[id]; ok {
		return "", err
	}
	code, ok := s.codes[id]
	if !ok {
		return "", shared.ErrNotFound
	}
	return code, nil
}

func newTenantRouter(v TenantValidator) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Tenant(v))
	r.GET("/test", func(c *gin.Context) {
		tenantID, ok := GetTenantID(c)
		body := gin.H{
			"tenant_id":   tenantID.String(),
			"ok":          ok,
			"tenant_code": c.GetString(TenantCodeKey),
		}
		if userID := GetUserID(c); userID != nil {
			body["user_id"] = userID.String()
		}
		body["log_tenant"] = logger.TenantID(c.Request.Context())
		c.JSON(http.StatusOK, body)
	})
	return r
}

func TestTenant(t *testing.T) {
	active := uuid.New()
	inactive := uuid.New()
	broken := uuid.New()
	validator := &stubTenantValidator{
		codes: map[uuid.UUID]string{active: "ACME"},
		err: map[uuid.UUID]error{
			inactive: shared.ErrTenantInactive,
			broken:   errors.New("db down"),
		},
	}
	r := newTenantRouter(validator)

	request := func(tenant, user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		if tenant != "" {
			req.Header.Set(TenantHeader, tenant)
		}
		if user != "" {
			req.Header.Set(UserHeader, user)
		}
		return serve(r, req)
	}

	t.Run("active tenant and user", func(t *testing.T) {
		userID := uuid.New()
		w := request(active.String(), userID.String())
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), active.String())
		assert.Contains(t, w.Body.String(), userID.String())
		assert.Contains(t, w.Body.String(), `"tenant_code":"ACME"`)
		assert.Contains(t, w.Body.String(), `"log_tenant":"`+active.String()+`"`)
	})

	t.Run("user is optional", func(t *testing.T) {
		w := request(active.String(), "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "user_id")
	})

	tests := []struct {
		name   string
		tenant string
		user   string
		status int
		code   string
	}{
		{"missing header", "", "", http.StatusBadRequest, dto.ErrCodeTenantRequired},
		{"malformed tenant", "not-a-uuid", "", http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"malformed user", active.String(), "nope", http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"unknown tenant", uuid.NewString(), "", http.StatusForbidden, dto.ErrCodeForbidden},
		{"inactive tenant", inactive.String(), "", http.StatusForbidden, dto.ErrCodeTenantInactive},
		{"validator failure", broken.String(), "", http.StatusInternalServerError, dto.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(tt.tenant, tt.user)
			assert.Equal(t, tt.status, w.Code)
			errInfo := decodeError(t, w)
			assert.Equal(t, tt.code, errInfo.Code)
			assert.NotEmpty(t, errInfo.RequestID)
		})
	}
}

func TestTenant_MalformedHeaderSkipsValidator(t *testing.T) {
	validator := &stubTenantValidator{}
	r := newTenantRouter(validator)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(TenantHeader, "garbage")
	serve(r, req)

	assert.Zero(t, validator.calls)
}

func TestGetTenantID_NotSet(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	id, ok := GetTenantID(c)
	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, id)
	assert.Nil(t, GetUserID(c))
}
