package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/autos-marketplace/internal/auth"
	"github.com/ErlanBelekov/autos-marketplace/internal/domain"
	"github.com/ErlanBelekov/autos-marketplace/internal/reqctx"
	"github.com/ErlanBelekov/autos-marketplace/internal/transport/http/httperr"
	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// sessionParser is the part of *auth.Sessions the gate needs.
type sessionParser interface {
	Parse(raw string) (*auth.Claims, error)
}

// Auth validates a Bearer session token and stores its claims in the gin
// context. The account id is also put on the request context for logging.
func Auth(sessions sessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, rawToken, found := strings.Cut(c.GetHeader("Authorization"), " ")
		rawToken = strings.TrimSpace(rawToken)
		if !found || scheme != "Bearer" || rawToken == "" {
			httperr.Abort(c, domain.ErrMissingToken)
			return
		}

		claims, err := sessions.Parse(rawToken)
		if err != nil {
			// every parse failure is a 401, whatever the parser wrapped
			if !errors.Is(err, domain.ErrSessionInvalid) {
				err = fmt.Errorf("%w: %w", domain.ErrSessionInvalid, err)
			}
			httperr.Abort(c, err)
			return
		}

		c.Set(claimsKey, claims)
		c.Request = c.Request.WithContext(reqctx.WithAccountID(c.Request.Context(), claims.AccountID))
		c.Next()
	}
}

// Claims returns the session claims set by Auth.
func Claims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
