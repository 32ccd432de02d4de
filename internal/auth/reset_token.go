package auth

import (
	"fmt"
	"time"

	"tastebook/backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ResetClaims is the password-reset token payload. The JTI keys a
// password_reset_tokens row so a token can only be redeemed once.
type ResetClaims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateResetToken signs a time-limited reset token for the given user id.
// Returns the token string, its JTI and the expiry.
func GenerateResetToken(userID uuid.UUID) (token string, jti string, expiresAt time.Time, err error) {
	if len(jwtKey) == 0 {
		return "", "", time.Time{}, fmt.Errorf("JWT secret key not initialized, call InitializeJWT() first")
	}

	lifespan := config.Cfg.ResetTokenLifespan
	if lifespan == 0 {
		lifespan = 30 * time.Minute
	}
	jti = uuid.NewString()
	expiresAt = time.Now().Add(lifespan)

	claims := &ResetClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "tastebook",
			Subject:   "password-reset",
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtKey)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("error signing reset token: %w", err)
	}
	return token, jti, expiresAt, nil
}

// VerifyResetToken checks signature and expiry and returns the claims.
// It fails closed: any parse or validation problem yields nil claims.
func VerifyResetToken(tokenString string) (*ResetClaims, error) {
	if len(jwtKey) == 0 {
		return nil, fmt.Errorf("JWT secret key not initialized")
	}

	claims := &ResetClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtKey, nil
	}, jwt.WithSubject("password-reset"))
	if err != nil {
		return nil, fmt.Errorf("error parsing reset token: %w", err)
	}
	if !token.Valid || claims.ID == "" {
		return nil, fmt.Errorf("invalid reset token")
	}
	return claims, nil
}
