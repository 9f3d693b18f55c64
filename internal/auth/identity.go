package auth

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"bluecarbon/internal/model"
)

// identityKey is the context key under which the middleware stores the
// verified identity. Handlers read it only through IdentityFromContext.
const identityKey = "auth.identity"

// Identity is the verified subject of a request, decoded from its session
// token. It is threaded through the handler chain as a typed context value.
type Identity struct {
	UserID uuid.UUID
	Role   model.Role
}

// SetIdentity stores a verified identity on the request context.
func SetIdentity(c echo.Context, id Identity) {
	c.Set(identityKey, id)
}

// IdentityFromContext returns the verified identity placed by the
// authentication middleware. The second return is false when no identity is
// present, which on a protected route means a middleware ordering bug —
// callers must fail closed.
func IdentityFromContext(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}
