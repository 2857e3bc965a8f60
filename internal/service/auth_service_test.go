package service

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// signToken mints an HS256 token the way the identity provider does.
func signToken(t *testing.T, secret, issuer string, user *models.User, ttl time.Duration) string {
	t.Helper()
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID:   user.ID,
		Roles:    user.Roles,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthServiceRoundTrip(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "edt"})
	user := &models.User{ID: 5, Email: "claire@univ.fr", FullName: "Claire Martin", Roles: []models.UserRole{models.RoleTeacher}}

	token := signToken(t, "secret", "edt", user, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(5), claims.UserID)
	assert.True(t, claims.HasRole(models.RoleTeacher))
	assert.False(t, claims.HasRole(models.RoleAdmin))
	assert.Equal(t, "5", claims.Subject)
}

func TestAuthServiceRejectsForeignTokens(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "edt"})
	user := &models.User{ID: 5, Roles: []models.UserRole{models.RoleAdmin}}

	forged := signToken(t, "other", "edt", user, time.Minute)
	_, err := svc.ValidateToken(forged)
	requireAppError(t, err, http.StatusUnauthorized)

	misissued := signToken(t, "secret", "someone-else", user, time.Minute)
	_, err = svc.ValidateToken(misissued)
	requireAppError(t, err, http.StatusUnauthorized)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &models.JWTClaims{UserID: 5})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	requireAppError(t, err, http.StatusUnauthorized)
}

func TestAuthServiceRejectsExpiredTokens(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret"})
	claims := &models.JWTClaims{UserID: 5, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	requireAppError(t, err, http.StatusUnauthorized)
}
