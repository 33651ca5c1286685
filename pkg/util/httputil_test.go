package util_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/btc-address-daemon/pkg/util"
)

func TestNewHTTPRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
		w.Write(append([]byte(r.Method+":"), body...))
	}))
	defer srv.Close()

	client := util.NewHTTPClient(time.Second)
	header := map[string]string{"Accept": "application/json"}

	status, body, err := client.NewHTTPRequest(
		context.Background(), http.MethodGet, srv.URL, "", header,
	)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, "GET:", string(body))

	status, body, err = client.NewHTTPRequest(
		context.Background(), http.MethodPost, srv.URL, "hello", header,
	)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, "POST:hello", string(body))
}

func TestFailingNewHTTPRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := util.NewHTTPClient(50 * time.Millisecond)

	_, _, err := client.NewHTTPRequest(
		context.Background(), "PATCH", srv.URL, "", nil,
	)
	assert.Error(t, err)

	_, _, err = client.NewHTTPRequest(
		context.Background(), http.MethodGet, srv.URL, "", nil,
	)
	assert.Error(t, err)
}
