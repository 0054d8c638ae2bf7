package testutil

import (
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"

	"github.com/ChiraniSiriwardhana/ASMS-Backend/middleware"
)

// MockValidatedClaims builds the claims object the real JWT middleware
// stores after validating a token.
func MockValidatedClaims(subject, role string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "https://test.auth0.com/",
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Role: role,
		},
	}
}

// SetMockAuthContext primes a gin context with an authenticated identity,
// mirroring the context keys middleware.EnsureValidToken sets. The subject
// doubles as the caller's username.
func SetMockAuthContext(c *gin.Context, username, role string) {
	c.Set("username", username)
	c.Set("validated_claims", MockValidatedClaims(username, role))
	c.Set("access_token", "mock-token")
}

// MockAuthMiddleware simulates authentication for suite routers, standing in
// for middleware.EnsureValidToken.
func MockAuthMiddleware(username, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, username, role)
		c.Next()
	}
}
