package model

import "github.com/golang-jwt/jwt/v5"

// MemberClaims are JWT claims for storefront members, issued by the account service
type MemberClaims struct {
	MemberID string `json:"memberId"`
	jwt.RegisteredClaims
}

// TokenResponse is returned by the dev token command
type TokenResponse struct {
	Token    string `json:"token"`
	MemberID string `json:"memberId"`
}
