package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repbep/internal/app"
	"repbep/internal/model"
	"repbep/internal/pkg/jwtutil"
	"repbep/internal/platform/database/dbtest"
	"repbep/internal/repository"
)

const testSecret = "test-secret"

func newAuthService(t *testing.T) *app.AuthService {
	t.Helper()
	db := dbtest.NewSQLite(t)
	return app.NewAuthService(repository.NewUserRepository(db), testSecret, time.Hour)
}

func TestRegisterIssuesTokenAndDefaults(t *testing.T) {
	svc := newAuthService(t)

	res, err := svc.Register(context.Background(), app.RegisterInput{
		Email:       "  Ada@Example.com ",
		Password:    "hunter22",
		DisplayName: "Ada Lovelace",
	})
	require.NoError(t, err)
	require.NotNil(t, res.User)

	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.Equal(t, "dark", res.User.Theme)
	assert.Equal(t, "emerald", res.User.ColorScheme)
	assert.Contains(t, res.User.Avatar, "seed=Ada+Lovelace")
	assert.True(t, res.User.WorkspaceSettings.AutoSave)
	assert.NotEqual(t, "hunter22", res.User.PasswordHash)

	claims, err := jwtutil.ParseToken(testSecret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID())
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, app.RegisterInput{Email: "a@b.c", Password: "pw", DisplayName: "A"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, app.RegisterInput{Email: "A@B.C", Password: "pw2", DisplayName: "B"})
	assert.ErrorIs(t, err, app.ErrEmailExists)
}

func TestRegisterRequiresFields(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(context.Background(), app.RegisterInput{Email: "a@b.c", Password: "pw"})
	assert.ErrorIs(t, err, app.ErrInvalidInput)
}

func TestLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, app.RegisterInput{Email: "a@b.c", Password: "right", DisplayName: "A"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, app.LoginInput{Email: "a@b.c", Password: "right"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Login(ctx, app.LoginInput{Email: "a@b.c", Password: "wrong"})
	assert.ErrorIs(t, err, app.ErrInvalidCredential)

	_, err = svc.Login(ctx, app.LoginInput{Email: "nobody@b.c", Password: "right"})
	assert.ErrorIs(t, err, app.ErrInvalidCredential)
}

func TestUpdateProfile(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, app.RegisterInput{Email: "a@b.c", Password: "pw", DisplayName: "A"})
	require.NoError(t, err)

	bio := "writes compilers"
	theme := "light"
	user, err := svc.UpdateProfile(ctx, registered.User.ID, model.ProfileUpdate{
		Bio:         &bio,
		Theme:       &theme,
		SocialLinks: &model.SocialLinks{GitHub: "ada"},
	})
	require.NoError(t, err)
	assert.Equal(t, bio, user.Bio)
	assert.Equal(t, theme, user.Theme)
	assert.Equal(t, "ada", user.SocialLinks.GitHub)
	assert.Equal(t, "A", user.DisplayName, "unset fields are kept")
	assert.True(t, user.WorkspaceSettings.Notifications)

	reloaded, err := svc.GetUserByID(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, bio, reloaded.Bio)

	_, err = svc.UpdateProfile(ctx, "missing", model.ProfileUpdate{Bio: &bio})
	assert.ErrorIs(t, err, app.ErrUserNotFound)
}
