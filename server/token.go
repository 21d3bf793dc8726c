package server

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// bearerLifetime bounds the outer JWT only; real session validity is
// governed by the session manager's sliding idle timeout.
const bearerLifetime = 24 * time.Hour

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// TokenCodec wraps the opaque session token in a signed bearer JWT so the
// transport can hand callers a tamper-evident credential.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec creates a codec signing with the given HS256 secret.
func NewTokenCodec(secret []byte) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("[NewTokenCodec] signing secret is required")
	}
	return &TokenCodec{secret: secret}, nil
}

// Issue signs a bearer token carrying the session token and identity.
func (c *TokenCodec) Issue(sessionToken, identity string) (string, error) {
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"sid": sessionToken,
		"sub": identity,
		"iat": now.Unix(),
		"exp": now.Add(bearerLifetime).Unix(),
		"jti": uuid.New().String(),
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", errors.Wrap(err, "[TokenCodec.Issue] sign")
	}
	return signed, nil
}

// Parse validates the bearer token and extracts the session token.
func (c *TokenCodec) Parse(raw string) (string, error) {
	token, err := jwtlib.Parse(raw, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwtlib.WithTimeFunc(func() time.Time { return NowTimeFunc() }))
	if err != nil {
		return "", errors.Wrap(err, "[TokenCodec.Parse] parse")
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("[TokenCodec.Parse] invalid token")
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", errors.New("[TokenCodec.Parse] missing sid claim")
	}
	return sid, nil
}
