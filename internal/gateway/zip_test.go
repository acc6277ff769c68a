package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZipForSentinelsWithoutNetworkCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := New(srv.URL, "key")
	ctx := context.Background()

	assert.Equal(t, "No transaction ID", c.ZipFor(ctx, nil))
	empty := ""
	assert.Equal(t, "No transaction ID", c.ZipFor(ctx, &empty))
	legacy := "ch_abc123"
	assert.Equal(t, "Invalid transaction format", c.ZipFor(ctx, &legacy))
	assert.False(t, called)
}

func TestZipForMissingAPIKey(t *testing.T) {
	c := New("http://unused", "")
	id := "t1_txn_abc"
	assert.Equal(t, "API key not configured", c.ZipFor(context.Background(), &id))
}

func TestZipForLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/txns/t1_txn_abc", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("APIKEY"))
		_, _ = w.Write([]byte(`{"response":{"data":[{"zip":"10001"}]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	id := "t1_txn_abc"
	assert.Equal(t, "10001", c.ZipFor(context.Background(), &id))
}

func TestZipForNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":{"data":[]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	id := "t1_txn_missing"
	assert.Equal(t, "ZIP not found", c.ZipFor(context.Background(), &id))
}

func TestZipForAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	id := "t1_txn_abc"
	assert.Equal(t, "API error: 401", c.ZipFor(context.Background(), &id))
}
