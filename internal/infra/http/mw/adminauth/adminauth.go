package adminauth

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// Middleware guards the sync control endpoints (manual trigger, interval
// change). Key comes from ADMIN_API_KEY; requests present it either as
// X-API-Key or as a bearer token.
type Middleware struct {
	apiKey string
}

func NewFromEnv() *Middleware {
	return &Middleware{
		apiKey: strings.TrimSpace(os.Getenv("ADMIN_API_KEY")),
	}
}

// Enabled reports whether a key is configured at all.
func (m *Middleware) Enabled() bool { return m.apiKey != "" }

func (m *Middleware) checkKey(r *http.Request) bool {
	if !m.Enabled() {
		return false
	}
	if k := strings.TrimSpace(r.Header.Get("X-API-Key")); k != "" {
		return k == m.apiKey
	}
	const pfx = "Bearer "
	if auth := strings.TrimSpace(r.Header.Get("Authorization")); strings.HasPrefix(auth, pfx) {
		return strings.TrimSpace(auth[len(pfx):]) == m.apiKey
	}
	return false
}

func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.Enabled() {
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": "server not configured (ADMIN_API_KEY is empty)"})
			return
		}
		if !m.checkKey(c.Request) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
