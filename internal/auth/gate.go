package auth

import (
	"backend-triage/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Policy decides what the gate does when no identity can be established.
type Policy int

const (
	// Advisory attaches an identity when one is available and never blocks.
	Advisory Policy = iota
	// Enforced rejects requests without a valid token.
	Enforced
)

const identityKey = "auth.identity"

// Gate returns a middleware that authenticates requests under policy.
func (v *Verifier) Gate(policy Policy) gin.HandlerFunc {
	const op = "auth.Gate"
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if policy == Enforced {
				c.Error(apperr.Unauthorized(op, "Unauthorized: token missing", nil))
				c.Abort()
				return
			}
			c.Next()
			return
		}

		id, err := v.Verify(token)
		if err != nil {
			if policy == Enforced {
				c.Error(apperr.Unauthorized(op, "Unauthorized: invalid token", err))
				c.Abort()
				return
			}
			c.Next()
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// FromContext returns the identity attached by the gate.
func FromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
