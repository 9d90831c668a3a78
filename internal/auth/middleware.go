package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hirelane/recruitment-service/internal/domain"
	apperrors "github.com/hirelane/recruitment-service/pkg/util/errorutil"
)

const (
	principalKey = "auth_principal"
	claimsKey    = "auth_claims"
)

// Principal represents the authenticated caller.
type Principal struct {
	User   *domain.User
	Groups []domain.Group
}

// IsAdmin reports whether any group carries the admin flag.
func (p *Principal) IsAdmin() bool {
	for _, g := range p.Groups {
		if g.IsAdmin || g.Name == domain.GroupSuperuser {
			return true
		}
	}
	return false
}

// IsSupervisor reports whether any group carries the supervisor flag. Admins are supervisors.
func (p *Principal) IsSupervisor() bool {
	for _, g := range p.Groups {
		if g.IsSupervisor {
			return true
		}
	}
	return p.IsAdmin()
}

// Can reports whether any group grants the permission.
func (p *Principal) Can(code domain.Permission) bool {
	for _, g := range p.Groups {
		if g.HasPermission(code) {
			return true
		}
	}
	return false
}

// GroupNames lists group names in membership order.
func (p *Principal) GroupNames() []string {
	names := make([]string, 0, len(p.Groups))
	for _, g := range p.Groups {
		names = append(names, g.Name)
	}
	return names
}

// UserLoader resolves principals from token subjects.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GroupsForUser(ctx context.Context, userID string) ([]domain.Group, error)
}

// RevocationList reports revoked access token ids.
type RevocationList interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens  *TokenManager
	users   UserLoader
	revoked RevocationList
}

// NewAuthMiddleware constructs middleware. revoked may be nil.
func NewAuthMiddleware(tokens *TokenManager, users UserLoader, revoked RevocationList) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, revoked: revoked}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	ctx := c.UserContext()
	if m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if revoked {
			return apperrors.NewUnauthorized("token revoked")
		}
	}

	user, err := m.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if !user.IsActive {
		return apperrors.NewUnauthorized("account inactive")
	}
	groups, err := m.users.GroupsForUser(ctx, user.ID)
	if err != nil {
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{User: user, Groups: groups})
	c.Locals(claimsKey, claims)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// ClaimsFromContext retrieves the parsed access token claims.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*Claims)
	return claims, ok
}
