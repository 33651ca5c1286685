package httpinterface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/btc-address-daemon/internal/core/application"
	"github.com/tdex-network/btc-address-daemon/pkg/auth"
	"github.com/tdex-network/btc-address-daemon/pkg/wallet"
)

const (
	seed   = "army van defense carry jealous true garbage claim echo media make crunch"
	pubkey = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
)

var publicKeys = []string{
	"03d728ad6757d4784effea04d47baafa216cf474866c2d4dc99b1e8e3eb936e730",
	"03aeb681df5ac19e449a872b9e9347f1db5a0394d2ec5caf2a9c143f86e232b0d9",
	"02d83bba35a8022c247b645eed6f81ac41b7c1580de550e7e82c75ad63ee9ac2fd",
}

func newTestServer(t *testing.T, opts ServiceOpts) *httptest.Server {
	if opts.AddressSvc == nil {
		opts.AddressSvc = application.NewAddressService(application.AddressServiceOpts{})
	}
	if opts.MaxConcurrentRequests == 0 {
		opts.MaxConcurrentRequests = 8
	}
	srv := httptest.NewServer(newRouter(opts))
	t.Cleanup(srv.Close)
	return srv
}

func post(
	t *testing.T, url string, body interface{}, header map[string]string,
) (int, []byte) {
	buf, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(buf))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, resBody
}

func TestRoot(t *testing.T) {
	srv := newTestServer(t, ServiceOpts{})

	res, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, welcomeMessage, string(body))
	assert.NotEmpty(t, res.Header.Get("X-Request-Id"))
}

func TestDeriveAddresses(t *testing.T) {
	srv := newTestServer(t, ServiceOpts{})

	expectedSegwit, err := wallet.DeriveSegwitAddress(seed)
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		body     interface{}
		expected addressResponse
	}{
		{
			name: "segwit from seed",
			path: "/seed",
			body: seedRequest{seed},
			expected: addressResponse{
				PublicKey: expectedSegwit.PublicKey.String(),
				Address:   expectedSegwit.Value,
			},
		},
		{
			name: "legacy from seed",
			path: "/legacy",
			body: seedRequest{seed},
			expected: addressResponse{
				PublicKey: expectedSegwit.PublicKey.String(),
				Address:   "15izCzAjLZtMZChHsVrVQ1GmJ5psPRGL6C",
			},
		},
		{
			name: "segwit from public key",
			path: "/pubkey",
			body: pubkeyRequest{pubkey},
			expected: addressResponse{
				PublicKey: pubkey,
				Address:   "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
			},
		},
		{
			name: "multisig",
			path: "/mofn",
			body: multisigRequest{M: 3, N: 3, PublicKeys: publicKeys},
			expected: addressResponse{
				Address: "3Bzxiixsr6ZKyJk9H5MLc52R7LZw3uzBuy",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, srv.URL+tt.path, tt.body, nil)
			require.Equal(t, http.StatusOK, status, string(body))

			res := addressResponse{}
			require.NoError(t, json.Unmarshal(body, &res))
			assert.Equal(t, tt.expected, res)
		})
	}
}

func TestMultisigResponseOmitsPublicKey(t *testing.T) {
	srv := newTestServer(t, ServiceOpts{})

	status, body := post(t, srv.URL+"/mofn", multisigRequest{
		M: 2, N: 3, PublicKeys: publicKeys,
	}, nil)
	require.Equal(t, http.StatusOK, status)

	res := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(body, &res))
	assert.NotContains(t, res, "public_key")
	assert.Contains(t, res, "address")
}

func TestFailingDeriveAddresses(t *testing.T) {
	srv := newTestServer(t, ServiceOpts{})

	tests := []struct {
		name     string
		path     string
		body     interface{}
		status   int
		errorMsg string
	}{
		{
			name:     "empty seed",
			path:     "/seed",
			body:     seedRequest{},
			status:   http.StatusBadRequest,
			errorMsg: application.ErrNullSeed.Error(),
		},
		{
			name:     "malformed body",
			path:     "/legacy",
			body:     "seed",
			status:   http.StatusBadRequest,
			errorMsg: "",
		},
		{
			name:     "malformed public key",
			path:     "/pubkey",
			body:     pubkeyRequest{"02abcd"},
			status:   http.StatusBadRequest,
			errorMsg: application.ErrMalformedPublicKey.Error(),
		},
		{
			name:     "n is zero",
			path:     "/mofn",
			body:     multisigRequest{M: 1, N: 0, PublicKeys: publicKeys},
			status:   http.StatusBadRequest,
			errorMsg: wallet.ErrEmptyN.Error(),
		},
		{
			name:     "m larger than n",
			path:     "/mofn",
			body:     multisigRequest{M: 4, N: 3, PublicKeys: publicKeys},
			status:   http.StatusBadRequest,
			errorMsg: wallet.ErrInvalidM.Error(),
		},
		{
			name:     "n larger than keys",
			path:     "/mofn",
			body:     multisigRequest{M: 1, N: 4, PublicKeys: publicKeys},
			status:   http.StatusBadRequest,
			errorMsg: wallet.ErrLargeN.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, srv.URL+tt.path, tt.body, nil)
			assert.Equal(t, tt.status, status)

			res := errorResponse{}
			require.NoError(t, json.Unmarshal(body, &res))
			assert.NotEmpty(t, res.Error)
			if tt.errorMsg != "" {
				assert.Contains(t, res.Error, tt.errorMsg)
			}
		})
	}
}

func TestAuthentication(t *testing.T) {
	validator := &mockValidator{}
	srv := newTestServer(t, ServiceOpts{Validator: validator})

	tests := []struct {
		name   string
		header map[string]string
		err    error
		status int
	}{
		{
			name:   "valid token",
			header: map[string]string{"Authorization": "Bearer valid"},
			status: http.StatusOK,
		},
		{
			name:   "missing token",
			status: http.StatusUnauthorized,
		},
		{
			name:   "invalid token",
			header: map[string]string{"Authorization": "Bearer invalid"},
			err:    auth.ErrInvalidToken,
			status: http.StatusUnauthorized,
		},
		{
			name:   "authority down",
			header: map[string]string{"Authorization": "Bearer valid"},
			err:    auth.ErrAuthorityUnavailable,
			status: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator.err = tt.err
			status, _ := post(t, srv.URL+"/pubkey", pubkeyRequest{pubkey}, tt.header)
			assert.Equal(t, tt.status, status)
		})
	}

	// root and metrics are public
	for _, path := range []string{"/", "/metrics"} {
		res, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
	}
}

func TestConcurrencyLimit(t *testing.T) {
	svc := &blockingAddressService{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	srv := newTestServer(t, ServiceOpts{
		AddressSvc:            svc,
		MaxConcurrentRequests: 1,
	})

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		status, _ := post(t, srv.URL+"/seed", seedRequest{seed}, nil)
		assert.Equal(t, http.StatusOK, status)
	}()

	select {
	case <-svc.started:
	case <-time.After(5 * time.Second):
		t.Fatal("request not started")
	}

	status, _ := post(t, srv.URL+"/seed", seedRequest{seed}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	close(svc.release)
	wg.Wait()
}

func TestThrottledRequestsDoNotHoldConcurrencySlots(t *testing.T) {
	srv := newTestServer(t, ServiceOpts{
		MaxConcurrentRequests: 1,
		MaxRequestsPerSecond:  5,
	})

	statuses := make(chan int, 3)
	wg := &sync.WaitGroup{}
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, _ := post(t, srv.URL+"/pubkey", pubkeyRequest{pubkey}, nil)
			statuses <- status
		}()
	}
	wg.Wait()
	close(statuses)

	for status := range statuses {
		assert.Equal(t, http.StatusOK, status)
	}
}

func TestInternalError(t *testing.T) {
	srv := newTestServer(t, ServiceOpts{
		AddressSvc: &blockingAddressService{err: errors.New("boom")},
	})

	status, body := post(t, srv.URL+"/seed", seedRequest{seed}, nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, string(body), "boom")
}

func TestNewServiceInvalidOpts(t *testing.T) {
	svc := application.NewAddressService(application.AddressServiceOpts{})

	for _, opts := range []ServiceOpts{
		{Port: 0, AddressSvc: svc, MaxConcurrentRequests: 1},
		{Port: 8080, MaxConcurrentRequests: 1},
		{Port: 8080, AddressSvc: svc},
		{Port: 8080, AddressSvc: svc, MaxConcurrentRequests: 1, MaxRequestsPerSecond: -1},
	} {
		_, err := NewService(opts)
		assert.Error(t, err)
	}
}

type mockValidator struct {
	err error
}

func (m *mockValidator) Validate(
	_ context.Context, _ string,
) (*jwt.StandardClaims, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &jwt.StandardClaims{Subject: "test"}, nil
}

type blockingAddressService struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	err     error
}

func (b *blockingAddressService) DeriveSegwitAddress(
	ctx context.Context, _ string,
) (*wallet.Address, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.once.Do(func() { close(b.started) })
	<-b.release
	return wallet.DeriveSegwitAddressFromPublicKey(mustPublicKey(pubkey)), nil
}

func (b *blockingAddressService) DeriveLegacyAddress(
	ctx context.Context, seed string,
) (*wallet.Address, error) {
	return b.DeriveSegwitAddress(ctx, seed)
}

func (b *blockingAddressService) DeriveSegwitAddressFromPublicKey(
	ctx context.Context, key string,
) (*wallet.Address, error) {
	return b.DeriveSegwitAddress(ctx, key)
}

func (b *blockingAddressService) DeriveMultisigAddress(
	ctx context.Context, _ application.MultisigRequest,
) (*wallet.Address, error) {
	return b.DeriveSegwitAddress(ctx, "")
}

func mustPublicKey(key string) wallet.PublicKey {
	k, err := wallet.NewPublicKeyFromString(key)
	if err != nil {
		panic(err)
	}
	return k
}
