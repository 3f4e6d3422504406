package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

const (
	GoogleIssuer   = "https://accounts.google.com"
	GoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"
)

var errNoEmailClaim = errors.New("id token has no email claim")

// GoogleVerifier validates Google ID tokens for a single OAuth client.
type GoogleVerifier struct {
	verifier      *oidc.IDTokenVerifier
	requireVerify bool
}

type googleOptions struct {
	keySet        oidc.KeySet
	httpClient    *http.Client
	now           func() time.Time
	requireVerify bool
}

// GoogleOption configures a GoogleVerifier.
type GoogleOption func(*googleOptions)

// WithKeySet replaces Google's remote JWKS, typically with oidc.StaticKeySet in tests.
func WithKeySet(ks oidc.KeySet) GoogleOption {
	return func(o *googleOptions) { o.keySet = ks }
}

// WithHTTPClient sets the client used to fetch Google's signing keys.
func WithHTTPClient(c *http.Client) GoogleOption {
	return func(o *googleOptions) {
		if c != nil {
			o.httpClient = c
		}
	}
}

func WithVerifierClock(now func() time.Time) GoogleOption {
	return func(o *googleOptions) { o.now = now }
}

// WithRequireVerifiedEmail rejects tokens whose email_verified claim is false.
func WithRequireVerifiedEmail(require bool) GoogleOption {
	return func(o *googleOptions) { o.requireVerify = require }
}

// NewGoogleVerifier returns a verifier that accepts ID tokens issued by Google
// for clientID. Signing keys are fetched lazily on first use and cached, so
// construction never touches the network. ctx bounds background key refreshes.
func NewGoogleVerifier(ctx context.Context, clientID string, opts ...GoogleOption) *GoogleVerifier {
	o := googleOptions{httpClient: &http.Client{Timeout: 10 * time.Second}}
	for _, opt := range opts {
		opt(&o)
	}

	keySet := o.keySet
	if keySet == nil {
		keySet = oidc.NewRemoteKeySet(oidc.ClientContext(ctx, o.httpClient), GoogleCertsURL)
	}

	return &GoogleVerifier{
		verifier: oidc.NewVerifier(GoogleIssuer, keySet, &oidc.Config{
			ClientID: clientID,
			Now:      o.now,
		}),
		requireVerify: o.requireVerify,
	}
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Verify checks the token signature, issuer, audience and expiry. Every
// failure, including a payload without an email, yields ErrInvalidFederatedToken.
func (g *GoogleVerifier) Verify(ctx context.Context, rawIDToken string) (*FederatedIdentity, error) {
	rawIDToken = strings.TrimSpace(rawIDToken)
	if rawIDToken == "" {
		return nil, ErrInvalidFederatedToken
	}

	token, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, errors.Join(ErrInvalidFederatedToken, err)
	}

	var claims googleClaims
	if err := token.Claims(&claims); err != nil {
		return nil, errors.Join(ErrInvalidFederatedToken, err)
	}

	email := NormalizeEmail(claims.Email)
	if email == "" {
		return nil, errors.Join(ErrInvalidFederatedToken, errNoEmailClaim)
	}
	if g.requireVerify && !claims.EmailVerified {
		return nil, errors.Join(ErrInvalidFederatedToken, errors.New("email is not verified"))
	}

	return &FederatedIdentity{
		Subject:       token.Subject,
		Email:         email,
		EmailVerified: claims.EmailVerified,
		Name:          strings.TrimSpace(claims.Name),
		Avatar:        claims.Picture,
	}, nil
}

var _ IdentityVerifier = (*GoogleVerifier)(nil)
