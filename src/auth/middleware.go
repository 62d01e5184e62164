package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Attach binds a principal to the request context when the source yields a
// usable subject. It never rejects; the gates below do.
func Attach(source ClaimSource, shape ClaimShape) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := source.Claims(c.Request); ok {
			if p, ok := shape.Principal(claims); ok {
				c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
			}
		}
		c.Next()
	}
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := FromContext(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

// RequireGroup lets through principals that belong to group.
func RequireGroup(group string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := FromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if !p.InGroup(group) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

// MustPrincipal is for handlers mounted behind RequireAuth.
func MustPrincipal(c *gin.Context) Principal {
	p, ok := FromContext(c.Request.Context())
	if !ok {
		panic("auth: handler reached without a bound principal")
	}
	return p
}
