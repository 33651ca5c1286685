package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/btc-address-daemon/pkg/circuitbreaker"
	"github.com/tdex-network/btc-address-daemon/pkg/util"
)

// DefaultMinRefreshInterval is the default minimum time between two downloads
// of the key set of the authority.
const DefaultMinRefreshInterval = 30 * time.Second

var (
	// ErrMissingToken is returned if the request carries no bearer token
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken is returned if the token is malformed, expired, badly
	// signed or not issued by the authority
	ErrInvalidToken = errors.New("invalid bearer token")
	// ErrUnknownKey is returned if the token is signed with a key not
	// published by the authority
	ErrUnknownKey = errors.New("token signed with unknown key")
	// ErrAuthorityUnavailable is returned if the key set of the authority
	// can't be retrieved
	ErrAuthorityUnavailable = errors.New("authority is unavailable")
)

// ValidatorOpts is the struct given to NewValidator
type ValidatorOpts struct {
	// Authority is the base url of the token issuer, ie. the expected value
	// of the iss claim
	Authority string
	// Timeout for requests to the authority
	Timeout time.Duration
	// MinRefreshInterval is the minimum time between two downloads of the key
	// set. Defaults to DefaultMinRefreshInterval if zero
	MinRefreshInterval time.Duration
}

func (o ValidatorOpts) validate() error {
	if len(o.Authority) <= 0 {
		return fmt.Errorf("authority must not be null")
	}
	u, err := url.Parse(o.Authority)
	if err != nil {
		return fmt.Errorf("invalid authority url: %s", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("authority must be an http(s) url")
	}
	if o.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if o.MinRefreshInterval < 0 {
		return fmt.Errorf("min refresh interval must not be negative")
	}
	return nil
}

func (o ValidatorOpts) minRefreshInterval() time.Duration {
	if o.MinRefreshInterval == 0 {
		return DefaultMinRefreshInterval
	}
	return o.MinRefreshInterval
}

// Validator checks RS256 bearer tokens against the keys published by an
// authority. Keys are cached and the set is downloaded again only when a token
// refers to an unknown key id, at most once every refresh interval.
type Validator struct {
	issuer          string
	jwksURL         string
	refreshInterval time.Duration
	client          *util.HTTPClient
	cb              *gobreaker.CircuitBreaker

	lock      *sync.RWMutex
	keys      map[string]*rsa.PublicKey
	lastFetch time.Time

	// serializes downloads of the key set
	fetchLock *sync.Mutex
}

func NewValidator(opts ValidatorOpts) (*Validator, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	jwksURL := strings.TrimSuffix(opts.Authority, "/") + "/" + WellKnownPath

	return &Validator{
		issuer:          opts.Authority,
		jwksURL:         jwksURL,
		refreshInterval: opts.minRefreshInterval(),
		client:          util.NewHTTPClient(opts.Timeout),
		cb:              circuitbreaker.NewCircuitBreaker("authority"),
		lock:            &sync.RWMutex{},
		keys:            make(map[string]*rsa.PublicKey),
		fetchLock:       &sync.Mutex{},
	}, nil
}

// Validate verifies signature and claims of the given token and returns the
// claims if valid. Issuer must match the authority and subject must be set.
func (v *Validator) Validate(
	ctx context.Context, token string,
) (*jwt.StandardClaims, error) {
	if len(token) <= 0 {
		return nil, ErrMissingToken
	}

	claims := &jwt.StandardClaims{}
	if _, err := jwt.ParseWithClaims(
		token, claims, func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodRS256.Alg() {
				return nil, fmt.Errorf(
					"%w: unexpected signing method %s", ErrInvalidToken, t.Method.Alg(),
				)
			}
			kid, _ := t.Header["kid"].(string)
			return v.getKey(ctx, kid)
		},
	); err != nil {
		return nil, parseError(err)
	}

	if !claims.VerifyIssuer(v.issuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer %s", ErrInvalidToken, claims.Issuer)
	}
	if len(claims.Subject) <= 0 {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims, nil
}

func (v *Validator) getKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	key, ok, refreshable := v.cachedKey(kid)
	if ok {
		return key, nil
	}
	if !refreshable {
		return nil, ErrUnknownKey
	}

	v.fetchLock.Lock()
	defer v.fetchLock.Unlock()

	// another request may have refreshed the set meanwhile
	key, ok, refreshable = v.cachedKey(kid)
	if ok {
		return key, nil
	}
	if !refreshable {
		return nil, ErrUnknownKey
	}

	keys, err := v.fetchKeys(ctx)
	if err != nil {
		return nil, err
	}
	log.Debugf("fetched %d signing keys from %s", len(keys), v.jwksURL)

	v.lock.Lock()
	v.keys = keys
	v.lastFetch = time.Now()
	v.lock.Unlock()

	key, ok = keys[kid]
	if !ok {
		return nil, ErrUnknownKey
	}
	return key, nil
}

// cachedKey returns the cached key with the given id, if any, and whether the
// key set can be downloaded again.
func (v *Validator) cachedKey(kid string) (*rsa.PublicKey, bool, bool) {
	v.lock.RLock()
	defer v.lock.RUnlock()

	key, ok := v.keys[kid]
	refreshable := v.lastFetch.IsZero() ||
		time.Since(v.lastFetch) >= v.refreshInterval
	return key, ok, refreshable
}

// TokenFromHeader returns the token of a "Bearer <token>" authorization
// header.
func TokenFromHeader(header string) (string, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if len(token) <= 0 {
		return "", ErrMissingToken
	}
	return token, nil
}

// errors returned by the key func are wrapped into a *jwt.ValidationError that
// doesn't support unwrapping.
func parseError(err error) error {
	if vErr, ok := err.(*jwt.ValidationError); ok && vErr.Inner != nil {
		inner := vErr.Inner
		if errors.Is(inner, ErrAuthorityUnavailable) ||
			errors.Is(inner, ErrUnknownKey) ||
			errors.Is(inner, ErrInvalidToken) {
			return inner
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidToken, err)
}
