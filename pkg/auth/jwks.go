package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
)

// WellKnownPath is where an authority publishes its signing keys.
const WellKnownPath = ".well-known/jwks.json"

type jwks struct {
	Keys []jsonWebKey `json:"keys"`
}

type jsonWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (k jsonWebKey) rsaPublicKey() (*rsa.PublicKey, error) {
	if k.Kty != "RSA" {
		return nil, fmt.Errorf("unsupported key type %s", k.Kty)
	}

	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus: %s", err)
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("invalid exponent: %s", err)
	}
	exp := new(big.Int).SetBytes(e)
	if len(n) <= 0 || !exp.IsInt64() || exp.Int64() <= 1 || exp.Int64() > 1<<31-1 {
		return nil, fmt.Errorf("invalid rsa key")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(n),
		E: int(exp.Int64()),
	}, nil
}

// fetchKeys downloads the key set of the authority and returns the RSA
// signing keys indexed by key id. Keys of other types are skipped.
func (v *Validator) fetchKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	res, err := v.cb.Execute(func() (interface{}, error) {
		status, body, err := v.client.NewHTTPRequest(
			ctx, http.MethodGet, v.jwksURL, "",
			map[string]string{"Accept": "application/json"},
		)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("authority replied with status %d", status)
		}
		return body, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAuthorityUnavailable, err)
	}

	set := jwks{}
	if err := json.Unmarshal(res.([]byte), &set); err != nil {
		return nil, fmt.Errorf("%w: malformed key set: %s", ErrAuthorityUnavailable, err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Use != "" && k.Use != "sig" {
			continue
		}
		key, err := k.rsaPublicKey()
		if err != nil {
			continue
		}
		keys[k.Kid] = key
	}
	return keys, nil
}
