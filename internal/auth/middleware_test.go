package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelane/recruitment-service/internal/domain"
	apperrors "github.com/hirelane/recruitment-service/pkg/util/errorutil"
)

type fakeLoader struct {
	users  map[string]*domain.User
	groups map[string][]domain.Group
}

func (f *fakeLoader) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeLoader) GroupsForUser(_ context.Context, userID string) ([]domain.Group, error) {
	return f.groups[userID], nil
}

type fakeRevocations map[string]bool

func (f fakeRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	return f[id], nil
}

func newGuardedApp(tm *TokenManager, loader UserLoader, revoked RevocationList, guard fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		de := apperrors.ToDomainError(err)
		return c.SendStatus(de.HTTPStatus)
	}})
	mw := NewAuthMiddleware(tm, loader, revoked)
	app.Get("/private", mw.Handle, guard, func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return c.SendStatus(http.StatusTeapot)
		}
		return c.SendString(p.User.Username)
	})
	return app
}

func TestAuthMiddlewareGuards(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	loader := &fakeLoader{
		users: map[string]*domain.User{
			"admin":    {ID: "admin", Username: "root", IsActive: true},
			"cand":     {ID: "cand", Username: "cand", IsActive: true},
			"inactive": {ID: "inactive", Username: "ghost"},
		},
		groups: map[string][]domain.Group{
			"admin": {{Name: domain.GroupAdmin, IsAdmin: true, IsSupervisor: true}},
			"cand":  {{Name: domain.GroupCandidate}},
		},
	}
	revoked := fakeRevocations{}
	app := newGuardedApp(tm, loader, revoked, RequireSupervisor())

	call := func(header string) int {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	adminToken, meta, err := tm.GenerateToken("admin", nil)
	require.NoError(t, err)
	candToken, _, err := tm.GenerateToken("cand", nil)
	require.NoError(t, err)
	inactiveToken, _, err := tm.GenerateToken("inactive", nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, call(""))
	assert.Equal(t, http.StatusUnauthorized, call("Token abc"))
	assert.Equal(t, http.StatusUnauthorized, call("Bearer garbage"))
	assert.Equal(t, http.StatusOK, call("Bearer "+adminToken))
	assert.Equal(t, http.StatusForbidden, call("Bearer "+candToken))
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+inactiveToken))

	revoked[meta.ID] = true
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+adminToken))
}

func TestPrincipalPermissions(t *testing.T) {
	p := &Principal{Groups: []domain.Group{{Name: domain.GroupRecruiter, Permissions: []domain.Permission{domain.PermChangeStatus}}}}
	assert.True(t, p.Can(domain.PermChangeStatus))
	assert.False(t, p.Can(domain.PermChangeUser))
	assert.False(t, p.IsAdmin())
	assert.False(t, p.IsSupervisor())
	assert.Equal(t, []string{domain.GroupRecruiter}, p.GroupNames())

	super := &Principal{Groups: []domain.Group{{Name: domain.GroupSuperuser}}}
	assert.True(t, super.IsAdmin())
	assert.True(t, super.IsSupervisor())
	assert.True(t, super.Can(domain.PermChangeUser))
}
