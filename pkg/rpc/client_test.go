package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodelet/nodelet/pkg/types"
)

// clientFor builds an HTTPClient pointed at a test server.
func clientFor(t *testing.T, server *httptest.Server) *HTTPClient {
	t.Helper()
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return NewHTTPClient(host, port)
}

func TestNotifyGCSRestart(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := clientFor(t, server)
	require.NoError(t, client.NotifyGCSRestart(context.Background()))
	assert.Equal(t, PathNotifyGCSRestart, gotPath)
}

func TestArgWaitCompletePayload(t *testing.T) {
	var got ArgWaitCompleteRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, PathArgWaitComplete, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := clientFor(t, server)
	workerID := types.NewWorkerID()
	require.NoError(t, client.ArgWaitComplete(context.Background(), 42, workerID))

	assert.Equal(t, int64(42), got.Tag)
	assert.Equal(t, workerID, got.IntendedWorkerID)
}

func TestRemoteRejectionKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "wrong worker", http.StatusConflict)
	}))
	defer server.Close()

	client := clientFor(t, server)
	err := client.NotifyGCSRestart(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindRemote, KindOf(err))
	assert.Contains(t, err.Error(), "409")
}

func TestUnreachableWorkerKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := clientFor(t, server)
	server.Close()

	err := client.NotifyGCSRestart(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindUnavailable, KindOf(err))
}

func TestTimeoutKind(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := clientFor(t, server)
	client.httpClient.Timeout = 50 * time.Millisecond

	err := client.NotifyGCSRestart(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestCanceledKind(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := clientFor(t, server)
	err := client.NotifyGCSRestart(ctx)
	require.Error(t, err)
	assert.Equal(t, KindCanceled, KindOf(err))
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("some other failure")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}
