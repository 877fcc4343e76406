// Package tokens manages session authentication
package tokens

import (
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const userSessionKind Kind = "user_session"

type (
	// the Kind of authentication token
	Kind string

	NewTokenOptions struct {
		key     jwk.Key
		Kind    Kind
		Subject string
		Expiry  *time.Time
		Claims  map[string]string
	}
)

func NewToken(opts NewTokenOptions) ([]byte, error) {
	builder := jwt.NewBuilder().
		Subject(opts.Subject).
		Claim("kind", opts.Kind).
		IssuedAt(time.Now())
	for k, v := range opts.Claims {
		builder = builder.Claim(k, v)
	}
	if opts.Expiry != nil {
		builder = builder.Expiration(*opts.Expiry)
	}
	token, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return jwt.Sign(token, jwt.WithKey(jwa.HS256, opts.key))
}

// parseToken verifies the signature and expiry of a token and returns the
// subject, provided the token is of the wanted kind.
func parseToken(key jwk.Key, wanted Kind, token []byte) (string, error) {
	parsed, err := jwt.Parse(token, jwt.WithKey(jwa.HS256, key), jwt.WithValidate(true))
	if err != nil {
		return "", err
	}
	kind, ok := parsed.Get("kind")
	if !ok || kind != string(wanted) {
		return "", errInvalidKind
	}
	return parsed.Subject(), nil
}
