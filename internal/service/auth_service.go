package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vitasurvey/internal/model"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService validates member tokens issued by the account service. Minting is only
// used by surveyctl for local testing.
type AuthService struct {
	jwtSecret []byte
}

// NewAuthService creates a new auth service
func NewAuthService(secret string) *AuthService {
	return &AuthService{
		jwtSecret: []byte(secret),
	}
}

// GenerateMemberToken creates a signed token for memberID valid for ttl
func (s *AuthService) GenerateMemberToken(memberID string, ttl time.Duration) (*model.TokenResponse, error) {
	now := time.Now()
	claims := &model.MemberClaims{
		MemberID: memberID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   memberID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &model.TokenResponse{
		Token:    tokenString,
		MemberID: memberID,
	}, nil
}

// ValidateMemberToken validates a member JWT and returns claims
func (s *AuthService) ValidateMemberToken(tokenString string) (*model.MemberClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.MemberClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.MemberClaims)
	if !ok || !token.Valid || claims.MemberID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
