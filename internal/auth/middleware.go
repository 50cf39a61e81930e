package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

type contextKey string

const principalContextKey contextKey = "artifactrepoPrincipal"

// Middleware resolves the bearer token, when present, into a Principal and
// stores it on the request context. Requests without a valid token proceed
// anonymously; handlers that need an identity use RequirePrincipal.
func Middleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}

		principal, err := validator.Validate(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(string(principalContextKey), principal)
		c.Next()
	}
}

// CurrentPrincipal extracts the authenticated principal from the context.
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	value, exists := c.Get(string(principalContextKey))
	if !exists {
		return Principal{}, false
	}
	principal, ok := value.(Principal)
	return principal, ok && principal.Authenticated()
}

func extractBearerToken(header string) string {
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
