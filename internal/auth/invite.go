package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// InviteClaims is the payload of a signed invite token. It carries no
// expiry: single use is enforced through the persisted is_active flag,
// not through the JWT itself.
type InviteClaims struct {
	CreatedAt float64 `json:"createdAt"`
	TargetID  string  `json:"id"`
	Email     string  `json:"email"`
}

func (c InviteClaims) Valid() error {
	if c.TargetID == "" || c.Email == "" {
		return errors.New("incomplete invite claims")
	}
	return nil
}

// GetExpirationTime and friends satisfy jwt.Claims for a payload without
// registered claims.
func (c InviteClaims) GetExpirationTime() (*jwt.NumericDate, error) { return nil, nil }
func (c InviteClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return nil, nil }
func (c InviteClaims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c InviteClaims) GetIssuer() (string, error)                   { return "", nil }
func (c InviteClaims) GetSubject() (string, error)                  { return "", nil }
func (c InviteClaims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

// MintInviteToken signs an invite for the given aggregate id and email.
func (tm *TokenManager) MintInviteToken(targetID, email string) (string, error) {
	claims := InviteClaims{
		CreatedAt: float64(time.Now().Unix()),
		TargetID:  targetID,
		Email:     email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// ParseInviteToken verifies the signature and returns the invite claims.
func (tm *TokenManager) ParseInviteToken(tokenStr string) (*InviteClaims, error) {
	claims := &InviteClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid invite claims")
	}
	return claims, claims.Valid()
}
