package auth_test

import (
	"context"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"testing"
	"time"
)

func newService() (*auth.Service, *memstore.Store) {
	st := memstore.New()
	return auth.NewService(st, memstore.NewSessions(), time.Hour).WithBcryptCost(bcrypt.MinCost), st
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	u, err := svc.Register(ctx, auth.RegisterInput{UserName: "budi", Email: " Budi@Example.com ", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", u.Email)
	assert.Equal(t, []auth.Role{auth.RoleCustomer}, u.Roles)
	assert.NotEqual(t, "Secret123", u.PasswordHash)

	token, logged, err := svc.Login(ctx, "BUDI@example.com", "Secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, u.ID, logged.ID)

	p, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)
	assert.False(t, p.IsAdmin())
}

func TestRegisterRejectsWeakPasswordAndDuplicates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	_, err := svc.Register(ctx, auth.RegisterInput{UserName: "budi", Email: "budi@example.com", Password: "alllowercase1"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Register(ctx, auth.RegisterInput{UserName: "budi", Email: "budi@example.com", Password: "Secret123"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, auth.RegisterInput{UserName: "budi2", Email: "BUDI@example.com", Password: "Secret123"})
	assert.ErrorIs(t, err, apperr.ErrBusinessRule)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	_, err := svc.Register(ctx, auth.RegisterInput{UserName: "budi", Email: "budi@example.com", Password: "Secret123"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "budi@example.com", "Wrong123")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, _, err = svc.Login(ctx, "nobody@example.com", "Secret123")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.Resolve(ctx, "not-a-token")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestResolveSeesGrantedRoles(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	u, err := svc.Register(ctx, auth.RegisterInput{UserName: "budi", Email: "budi@example.com", Password: "Secret123"})
	require.NoError(t, err)
	token, _, err := svc.Login(ctx, "budi@example.com", "Secret123")
	require.NoError(t, err)

	require.NoError(t, svc.GrantRole(ctx, u.ID, auth.RoleSeller))
	require.NoError(t, svc.GrantRole(ctx, u.ID, auth.RoleSeller))

	p, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.ElementsMatch(t, []auth.Role{auth.RoleCustomer, auth.RoleSeller}, p.Roles)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc, st := newService()

	created, err := svc.EnsureAdmin(ctx, "", "")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = svc.EnsureAdmin(ctx, "root@example.com", "Admin123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "root@example.com", "Admin123")
	require.NoError(t, err)
	assert.False(t, created)

	u, err := st.UserByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.True(t, u.Principal().IsAdmin())
}
