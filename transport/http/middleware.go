package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/compass-app/gatekeeper/core"
	"github.com/compass-app/gatekeeper/service"
)

const contextKeySession = "sessionState"

// SessionMiddleware creates middleware that requires a valid session cookie.
// Anything short of a resolvable, verified credential is a 401; the payment
// endpoints never reveal more than that.
func SessionMiddleware(sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieSession)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		siweVerified, _ := c.Cookie(CookieSiweVerified)

		state, err := sessions.Authenticate(c.Request.Context(), token, siweVerified == "true")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		c.Set(contextKeySession, state)

		c.Next()
	}
}

// sessionState returns the state placed in the context by SessionMiddleware.
func sessionState(c *gin.Context) *core.SessionState {
	value, exists := c.Get(contextKeySession)
	if !exists {
		return &core.SessionState{}
	}
	state, ok := value.(*core.SessionState)
	if !ok {
		return &core.SessionState{}
	}
	return state
}
