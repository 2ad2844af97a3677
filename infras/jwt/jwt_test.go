package jwt_test

import (
	"crm/config"
	"crm/infras/jwt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() jwt.JWT {
	cfg := &config.Config{}
	cfg.App.Name = "crm-test"
	cfg.JWT.AccessSecret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessExpireMin = 15
	cfg.JWT.RefreshExpireMin = 60

	return jwt.New(cfg)
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	svc := newService()

	subject := jwt.Subject{UserID: "user-1", Email: "sales@hotel.test", Name: "Rina Sales", Role: "user"}

	pair, err := svc.GenerateTokenPair(subject)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(15*60), pair.ExpiresIn)

	claims, err := svc.ValidateToken(pair.AccessToken, jwt.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, subject, claims.ToSubject())
	assert.Equal(t, jwt.AccessToken, claims.Type)
}

func TestValidateToken_WrongType(t *testing.T) {
	svc := newService()

	pair, err := svc.GenerateTokenPair(jwt.Subject{UserID: "user-1", Email: "a@b.c"})
	require.NoError(t, err)

	// a refresh token is signed with the refresh secret, so it fails signature checks as an access token
	_, err = svc.ValidateToken(pair.RefreshToken, jwt.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := newService().ValidateToken("not-a-token", jwt.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestRefreshTokens(t *testing.T) {
	svc := newService()

	pair, err := svc.GenerateTokenPair(jwt.Subject{UserID: "user-2", Email: "b@c.d", Role: "admin"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshTokens(pair.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(refreshed.AccessToken, jwt.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidateToken_Expired(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.AccessSecret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessExpireMin = -5

	pair, err := jwt.New(cfg).GenerateTokenPair(jwt.Subject{UserID: "user-1"})
	require.NoError(t, err)

	_, err = jwt.New(cfg).ValidateToken(pair.AccessToken, jwt.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrExpiredToken)
}

func TestValidateToken_OtherIssuer(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Name = "another-app"
	cfg.JWT.AccessSecret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessExpireMin = 15

	pair, err := jwt.New(cfg).GenerateTokenPair(jwt.Subject{UserID: "user-1"})
	require.NoError(t, err)

	_, err = newService().ValidateToken(pair.AccessToken, jwt.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		header string
		token  string
		err    error
	}{
		{header: "Bearer abc.def", token: "abc.def"},
		{header: "bearer abc.def", token: "abc.def"},
		{header: "Basic abc", err: jwt.ErrBearerScheme},
		{header: "Bearer ", err: jwt.ErrBearerScheme},
		{header: "abc.def", err: jwt.ErrBearerScheme},
		{header: "", err: jwt.ErrMissingHeader},
	}

	for _, tt := range tests {
		token, err := jwt.ExtractTokenFromHeader(tt.header)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, tt.header)

			continue
		}

		require.NoError(t, err, tt.header)
		assert.Equal(t, tt.token, token)
	}
}
