package middleware

import (
	"context"
	"errors"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/erp/buildledger/internal/infrastructure/logger"
	"github.com/erp/buildledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Headers and gin keys of the caller identity
const (
	TenantHeader  = "X-Tenant-ID"
	UserHeader    = "X-User-ID"
	TenantIDKey   = "tenant_id"
	TenantCodeKey = "tenant_code"
	UserIDKey     = "user_id"
)

// TenantValidator checks that a tenant exists and is active and returns its code
type TenantValidator interface {
	ValidateTenant(ctx context.Context, id uuid.UUID) (string, error)
}

// Tenant resolves the caller's tenant from X-Tenant-ID and the optional
// acting user from X-User-ID. Unknown tenants are rejected with 403, and
// inactive ones with 403 ERR_TENANT_INACTIVE.
func Tenant(validator TenantValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(TenantHeader)
		if raw == "" {
			abort(c, dto.ErrCodeTenantRequired, "X-Tenant-ID header is required")
			return
		}
		tenantID, err := uuid.Parse(raw)
		if err != nil {
			abort(c, dto.ErrCodeBadRequest, "Invalid tenant ID format")
			return
		}

		var userID *uuid.UUID
		if rawUser := c.GetHeader(UserHeader); rawUser != "" {
			id, err := uuid.Parse(rawUser)
			if err != nil {
				abort(c, dto.ErrCodeBadRequest, "Invalid user ID format")
				return
			}
			userID = &id
		}

		ctx := c.Request.Context()
		code, err := validator.ValidateTenant(ctx, tenantID)
		if err != nil {
			log := logger.FromContext(ctx)
			switch {
			case errors.Is(err, shared.ErrTenantInactive):
				log.Info("Rejected request for inactive tenant", zap.String("tenant_id", raw))
				abort(c, dto.ErrCodeTenantInactive, "Tenant is inactive")
			case errors.Is(err, shared.ErrNotFound):
				log.Warn("Rejected request for unknown tenant", zap.String("tenant_id", raw))
				abort(c, dto.ErrCodeForbidden, "Unknown tenant")
			default:
				log.Error("Tenant validation failed", zap.String("tenant_id", raw), zap.Error(err))
				abort(c, dto.ErrCodeInternal, "An unexpected error occurred")
			}
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Set(TenantCodeKey, code)
		user := ""
		if userID != nil {
			c.Set(UserIDKey, *userID)
			user = userID.String()
		}
		c.Request = c.Request.WithContext(logger.WithTenant(ctx, tenantID.String(), user))
		c.Next()
	}
}

// GetTenantID returns the tenant resolved by the Tenant middleware
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(TenantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetUserID returns the acting user, or nil when the request named none
func GetUserID(c *gin.Context) *uuid.UUID {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}
