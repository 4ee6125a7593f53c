// Package tokens signs and verifies the service's JWTs. It holds no state
// besides the key and does no I/O.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var supportedMethods = map[string]jwt.SigningMethod{
	jwt.SigningMethodHS256.Alg(): jwt.SigningMethodHS256,
	jwt.SigningMethodHS384.Alg(): jwt.SigningMethodHS384,
	jwt.SigningMethodHS512.Alg(): jwt.SigningMethodHS512,
}

// SupportedAlgorithm reports whether alg can be used to build a Codec.
func SupportedAlgorithm(alg string) bool {
	_, ok := supportedMethods[alg]
	return ok
}

type Codec struct {
	secret []byte
	method jwt.SigningMethod
	issuer string
	now    func() time.Time
}

type Option func(*Codec)

// WithClock replaces time.Now for issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func NewCodec(secret []byte, alg, issuer string, opts ...Option) (*Codec, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty secret", ErrConfig)
	}
	method, ok := supportedMethods[alg]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrConfig, alg)
	}
	c := &Codec{
		secret: secret,
		method: method,
		issuer: issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Codec) Issue(sub Subject, typ Type, ttl time.Duration) (Issued, error) {
	now := c.now().UTC()
	exp := now.Add(ttl)
	jti := uuid.NewString()

	claims := Claims{
		Role:   sub.Role,
		Device: sub.Device,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   sub.UserID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	t := jwt.NewWithClaims(c.method, claims)
	t.Header[typeHeader] = string(typ)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return Issued{}, err
	}

	return Issued{Token: signed, JTI: jti, ExpiresAt: exp}, nil
}

// Verify checks signature, issuer and time bounds and returns the claims.
// It does not look at the type header; use CheckType for that.
func (c *Codec) Verify(raw string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if claims.RegisteredClaims.Subject == "" || claims.ID == "" {
		return nil, ErrMalformedToken
	}

	return &claims, nil
}

// CheckType compares the type header without verifying the signature.
func (c *Codec) CheckType(raw string, expected Type) error {
	t, _, err := jwt.NewParser().ParseUnverified(raw, &Claims{})
	if err != nil {
		return ErrMalformedToken
	}
	typ, _ := t.Header[typeHeader].(string)
	if Type(typ) != expected {
		return ErrTokenTypeMismatch
	}
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	default:
		return ErrMalformedToken
	}
}
