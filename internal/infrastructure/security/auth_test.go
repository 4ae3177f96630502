package security

import (
	"context"
	"testing"
	"time"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// TokenServiceTestSuite provides a test suite for TokenService
type TokenServiceTestSuite struct {
	suite.Suite
	cfg     config.AuthConfig
	service *TokenService
	clock   time.Time
}

func (suite *TokenServiceTestSuite) SetupTest() {
	suite.cfg = config.AuthConfig{
		JWTSecret:     "test-secret-key-for-testing-only-32-bytes",
		JWTExpiration: time.Hour,
		Issuer:        "cookbook",
		Audience:      "cookbook-api",
	}
	suite.clock = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	suite.service = suite.newService(suite.cfg)
}

func (suite *TokenServiceTestSuite) newService(cfg config.AuthConfig) *TokenService {
	s := NewTokenService(cfg, zap.NewNop())
	s.now = func() time.Time { return suite.clock }
	return s
}

func (suite *TokenServiceTestSuite) TestGenerateAndValidate() {
	// Arrange
	userID := uuid.New()

	// Act
	token, expiresAt, err := suite.service.GenerateAccessToken(userID, "chef@example.com")
	suite.Require().NoError(err)
	claims, err := suite.service.ValidateToken(token)

	// Assert
	suite.Require().NoError(err)
	suite.Equal(userID, claims.UserUUID())
	suite.Equal("chef@example.com", claims.Email)
	suite.Equal(suite.clock.Add(time.Hour), expiresAt)
	suite.Equal(jwt.ClaimStrings{"cookbook-api"}, claims.Audience)
}

func (suite *TokenServiceTestSuite) TestValidate_Expired() {
	token, _, err := suite.service.GenerateAccessToken(uuid.New(), "")
	suite.Require().NoError(err)

	suite.clock = suite.clock.Add(2 * time.Hour)
	_, err = suite.service.ValidateToken(token)

	suite.ErrorIs(err, ErrInvalidToken)
}

func (suite *TokenServiceTestSuite) TestValidate_Rejections() {
	token, _, err := suite.service.GenerateAccessToken(uuid.New(), "")
	suite.Require().NoError(err)

	otherSecret := suite.cfg
	otherSecret.JWTSecret = "another-secret"
	otherAudience := suite.cfg
	otherAudience.Audience = "admin-api"
	otherIssuer := suite.cfg
	otherIssuer.Issuer = "someone-else"

	tests := []struct {
		name    string
		service *TokenService
		token   string
	}{
		{name: "garbage", service: suite.service, token: "invalid.jwt.token"},
		{name: "wrong secret", service: suite.newService(otherSecret), token: token},
		{name: "wrong audience", service: suite.newService(otherAudience), token: token},
		{name: "wrong issuer", service: suite.newService(otherIssuer), token: token},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			claims, err := tt.service.ValidateToken(tt.token)
			suite.ErrorIs(err, ErrInvalidToken)
			suite.Nil(claims)
		})
	}
}

func (suite *TokenServiceTestSuite) TestValidate_RejectsOtherAlgorithms() {
	claims := &Claims{
		UserID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "cookbook",
			Audience:  jwt.ClaimStrings{"cookbook-api"},
			ExpiresAt: jwt.NewNumericDate(suite.clock.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	suite.Require().NoError(err)

	_, err = suite.service.ValidateToken(token)

	suite.ErrorIs(err, ErrInvalidToken)
}

func (suite *TokenServiceTestSuite) TestValidate_MissingUserID() {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "cookbook",
			Audience:  jwt.ClaimStrings{"cookbook-api"},
			ExpiresAt: jwt.NewNumericDate(suite.clock.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(suite.cfg.JWTSecret))
	suite.Require().NoError(err)

	_, err = suite.service.ValidateToken(token)

	suite.ErrorIs(err, ErrMissingSubject)
}

func TestTokenServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceTestSuite))
}

func TestUserContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	id := uuid.New()
	got, ok := UserIDFromContext(ContextWithUser(context.Background(), id))
	require.True(t, ok)
	assert.Equal(t, id, got)
}
