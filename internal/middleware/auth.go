package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/SumatiPandey/Doctor-Appointment/internal/handler"
	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
	"github.com/SumatiPandey/Doctor-Appointment/internal/service/rbac"
)

// Resolver turns a bearer token into the calling principal.
type Resolver interface {
	Resolve(ctx context.Context, token string) (model.Principal, error)
}

type AuthMiddleware struct {
	resolver Resolver
	policy   *rbac.Policy
}

func NewAuthMiddleware(resolver Resolver, policy *rbac.Policy) *AuthMiddleware {
	return &AuthMiddleware{
		resolver: resolver,
		policy:   policy,
	}
}

// Authenticate resolves the Authorization bearer token and stores the principal on the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := m.resolver.Resolve(c.Request.Context(), bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			handler.RespondError(c, err)
			return
		}

		log.Ctx(c.Request.Context()).UpdateContext(func(l zerolog.Context) zerolog.Context {
			return l.Str("user_id", principal.SubjectID.String()).Str("role", string(principal.Role))
		})
		c.Set(handler.ContextPrincipal, principal)
		c.Next()
	}
}

// RequireOperation rejects callers whose role may not attempt op. Ownership
// is checked later by the service that loads the record.
func (m *AuthMiddleware) RequireOperation(op rbac.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := m.policy.CheckRole(handler.Principal(c), op); err != nil {
			handler.RespondError(c, err)
			return
		}
		c.Next()
	}
}

// bearerToken returns the token of a "Bearer <token>" header. A header in
// any other shape yields a non-empty garbage token so it fails validation
// instead of reading as missing.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return header
	}
	return strings.TrimSpace(token)
}
