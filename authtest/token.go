package authtest

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenSigningKey only exists so minted tokens are well-formed JWTs; nothing
// verifies them.
var tokenSigningKey = []byte("authtest")

// mintIDToken issues a token shaped like the real backend's ID tokens so
// refresh flows have something observable to carry.
func mintIDToken(uid, email string, issuedAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": uid,
		"iat": jwt.NewNumericDate(issuedAt),
		"exp": jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}
	if email != "" {
		claims["email"] = email
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tokenSigningKey)
}
