package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
)

func login(e *testEnv, email, password string) (*AuthTokens, error) {
	return e.auth.Login(context.Background(), &models.LoginRequest{Email: email, Password: password})
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	o := e.org(t)

	tokens, err := login(e, "  Employee@Example.com ", testPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, 15*60, tokens.ExpiresIn)
	assert.Equal(t, o.employee.ID, tokens.User.ID)
	assert.Empty(t, tokens.User.PasswordHash)

	claims, err := e.auth.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, o.employee.ID, claims.UserID)
	assert.Equal(t, models.RoleEmployee, claims.Role)

	_, err = login(e, "employee@example.com", "wrong-password")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	_, err = login(e, "nobody@example.com", testPassword)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	_, err = login(e, "", "")
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	t.Run("deactivated accounts are refused", func(t *testing.T) {
		o.lead.IsActive = false
		require.NoError(t, e.users.Update(context.Background(), o.lead))
		_, err := login(e, "lead@example.com", testPassword)
		assert.ErrorIs(t, err, pkg.ErrForbidden)
	})
}

func TestAccessTokenValidation(t *testing.T) {
	e := newTestEnv(t)
	e.org(t)

	tokens, err := login(e, "employee@example.com", testPassword)
	require.NoError(t, err)

	_, err = e.auth.ValidateAccessToken(tokens.AccessToken + "x")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	other := NewAuthService(e.users, e.sessions, e.resets, nil, "another-secret", 15, 7)
	_, err = other.ValidateAccessToken(tokens.AccessToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	e.auth.(*authService).now = func() time.Time { return time.Now().Add(16 * time.Minute) }
	_, err = e.auth.ValidateAccessToken(tokens.AccessToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized, "expired")
}

func TestRefreshRotatesSession(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	e.org(t)

	first, err := login(e, "employee@example.com", testPassword)
	require.NoError(t, err)

	second, err := e.auth.RefreshToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = e.auth.RefreshToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized, "spent refresh token")

	require.NoError(t, e.auth.Logout(ctx, second.RefreshToken))
	_, err = e.auth.RefreshToken(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	assert.NoError(t, e.auth.Logout(ctx, "unknown"), "logout is idempotent")

	t.Run("expired session", func(t *testing.T) {
		tokens, err := login(e, "employee@example.com", testPassword)
		require.NoError(t, err)
		e.auth.(*authService).now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
		defer func() { e.auth.(*authService).now = time.Now }()
		_, err = e.auth.RefreshToken(ctx, tokens.RefreshToken)
		assert.ErrorIs(t, err, pkg.ErrUnauthorized)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	o := e.org(t)

	err := e.auth.ChangePassword(ctx, o.employee.ID, &models.ChangePasswordRequest{CurrentPassword: "nope-nope", NewPassword: "new-password"})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	err = e.auth.ChangePassword(ctx, o.employee.ID, &models.ChangePasswordRequest{CurrentPassword: testPassword, NewPassword: testPassword})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	err = e.auth.ChangePassword(ctx, o.employee.ID, &models.ChangePasswordRequest{CurrentPassword: testPassword, NewPassword: "short"})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	require.NoError(t, e.auth.ChangePassword(ctx, o.employee.ID, &models.ChangePasswordRequest{CurrentPassword: testPassword, NewPassword: "new-password"}))
	_, err = login(e, "employee@example.com", "new-password")
	assert.NoError(t, err)
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	e.org(t)

	session, err := login(e, "employee@example.com", testPassword)
	require.NoError(t, err)

	cooldown, err := e.auth.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "Employee@example.com"})
	require.NoError(t, err)
	assert.Zero(t, cooldown)
	token := e.mailer.resets["employee@example.com"]
	require.NotEmpty(t, token)

	cooldown, err = e.auth.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "employee@example.com"})
	require.NoError(t, err)
	assert.Positive(t, cooldown)
	assert.LessOrEqual(t, cooldown, 91)

	cooldown, err = e.auth.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "ghost@example.com"})
	require.NoError(t, err, "unknown addresses look the same")
	assert.Zero(t, cooldown)
	assert.NotContains(t, e.mailer.resets, "ghost@example.com")

	err = e.auth.ResetPassword(ctx, &models.ResetPasswordRequest{Token: "bogus", NewPassword: "brand-new-pass"})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	require.NoError(t, e.auth.ResetPassword(ctx, &models.ResetPasswordRequest{Token: token, NewPassword: "brand-new-pass"}))

	_, err = e.auth.RefreshToken(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized, "reset signs out every session")

	_, err = login(e, "employee@example.com", "brand-new-pass")
	assert.NoError(t, err)

	err = e.auth.ResetPassword(ctx, &models.ResetPasswordRequest{Token: token, NewPassword: "another-pass"})
	assert.ErrorIs(t, err, pkg.ErrBadRequest, "tokens are single use")

	t.Run("disabled without a mailer", func(t *testing.T) {
		svc := NewAuthService(e.users, e.sessions, e.resets, nil, "test-secret", 15, 7)
		_, err := svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "employee@example.com"})
		assert.ErrorIs(t, err, pkg.ErrBadRequest)
	})
}
