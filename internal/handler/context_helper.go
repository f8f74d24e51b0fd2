package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campusfees/fee-management-api/internal/middleware"
	"github.com/campusfees/fee-management-api/internal/models"
)

// claimsFromContext returns the authenticated caller's claims, or nil when
// the route ran without the JWT middleware or the token was absent.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	if claims, ok := value.(*models.JWTClaims); ok {
		return claims
	}
	return nil
}
