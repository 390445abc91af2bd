package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nodelet/nodelet/pkg/types"
)

// Worker-side RPC paths. Worker runtimes serve these; the daemon posts to
// them through WorkerClient.
const (
	PathNotifyGCSRestart = "/rpc/notify-gcs-restart"
	PathArgWaitComplete  = "/rpc/arg-wait-complete"
)

// WorkerClient pushes notifications to one worker's RPC endpoint. Both
// calls are advisory: the daemon logs failures and moves on.
//
// Implementations must be safe for concurrent use. Besides the HTTP client
// below, tests use scripted fakes.
type WorkerClient interface {
	// NotifyGCSRestart tells the worker the global control service came
	// back after a restart, so it can re-establish its subscriptions.
	NotifyGCSRestart(ctx context.Context) error

	// ArgWaitComplete tells the worker that a blocked argument wait
	// identified by tag has finished. The intended worker ID lets the
	// runtime discard deliveries misrouted across port reuse.
	ArgWaitComplete(ctx context.Context, tag int64, intendedWorkerID types.WorkerID) error
}

// ClientFactory builds the outbound client for an announced worker
// endpoint. The daemon installs NewHTTPClient; tests install fakes.
type ClientFactory func(ip string, port int) WorkerClient

// ArgWaitCompleteRequest is the wire payload of PathArgWaitComplete.
type ArgWaitCompleteRequest struct {
	Tag              int64          `json:"tag"`
	IntendedWorkerID types.WorkerID `json:"intended_worker_id"`
}

// HTTPClient is the network-backed WorkerClient speaking JSON over HTTP to
// the port the worker announced.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient returns a client bound to the worker endpoint at ip:port.
func NewHTTPClient(ip string, port int) *HTTPClient {
	return &HTTPClient{
		baseURL: fmt.Sprintf("http://%s:%d", ip, port),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NotifyGCSRestart implements WorkerClient.
func (c *HTTPClient) NotifyGCSRestart(ctx context.Context) error {
	return c.post(ctx, "notify_gcs_restart", PathNotifyGCSRestart, struct{}{})
}

// ArgWaitComplete implements WorkerClient.
func (c *HTTPClient) ArgWaitComplete(ctx context.Context, tag int64, intendedWorkerID types.WorkerID) error {
	return c.post(ctx, "arg_wait_complete", PathArgWaitComplete, ArgWaitCompleteRequest{
		Tag:              tag,
		IntendedWorkerID: intendedWorkerID,
	})
}

func (c *HTTPClient) post(ctx context.Context, op, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &Error{Kind: KindInvalid, Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &Error{Kind: KindInvalid, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: classify(err), Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &Error{
			Kind: KindRemote,
			Op:   op,
			Err:  fmt.Errorf("worker returned %s: %s", resp.Status, strings.TrimSpace(string(msg))),
		}
	}
	return nil
}
