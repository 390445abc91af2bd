package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nodelet/nodelet/pkg/api"
	"github.com/nodelet/nodelet/pkg/types"
)

// requestTimeout bounds every API call issued by the client.
const requestTimeout = 10 * time.Second

// Client wraps the nodelet HTTP API for easy CLI usage.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the daemon listening at addr. The address
// may be a bare host:port; the http scheme is assumed.
func NewClient(addr string) *Client {
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return &Client{
		baseURL: strings.TrimSuffix(addr, "/"),
		http:    &http.Client{},
	}
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// ListWorkers lists all workers registered with the daemon.
func (c *Client) ListWorkers() ([]types.WorkerInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var resp api.ListWorkersResponse
	if err := c.do(ctx, http.MethodGet, "/v1/workers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Workers, nil
}

// KillWorker asks the daemon to terminate a worker. With force set the
// process is killed outright; otherwise it gets the grace period first.
func (c *Client) KillWorker(id types.WorkerID, force bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	path := "/v1/workers/" + id.String() + "/kill"
	return c.do(ctx, http.MethodPost, path, api.KillRequest{Force: force}, nil)
}

// DisconnectWorker retires a worker record without signaling the process.
func (c *Client) DisconnectWorker(id types.WorkerID) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	path := "/v1/workers/" + id.String() + "/disconnect"
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// LeaseWorker asks the daemon for an idle worker to run the given task.
func (c *Client) LeaseWorker(req api.LeaseRequest) (*types.WorkerInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var resp api.LeaseResponse
	if err := c.do(ctx, http.MethodPost, "/v1/workers/lease", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Worker, nil
}

// ReleaseWorker returns a leased worker to the idle pool.
func (c *Client) ReleaseWorker(id types.WorkerID, taskID types.TaskID) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	path := "/v1/workers/" + id.String() + "/release"
	return c.do(ctx, http.MethodPost, path, api.ReleaseRequest{TaskID: taskID}, nil)
}

// Announce reports a worker's listen port back to the daemon. Worker
// runtimes call this once their RPC server is up.
func (c *Client) Announce(id types.WorkerID, token types.StartupToken, port int) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	req := api.AnnounceRequest{WorkerID: id, StartupToken: token, Port: port}
	return c.do(ctx, http.MethodPost, "/v1/workers/announce", req, nil)
}

// NotifyGCSRestarted fans a cluster-store restart notification out to every
// live worker and returns how many were notified.
func (c *Client) NotifyGCSRestarted() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var resp api.GCSRestartedResponse
	if err := c.do(ctx, http.MethodPost, "/v1/gcs/restarted", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Workers, nil
}

// Health fetches the daemon liveness report.
func (c *Client) Health() (*api.HealthResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var resp api.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do issues one JSON request and decodes the response into out when the
// daemon answers with a 2xx status.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s", apiErr.Error)
		}
		return fmt.Errorf("daemon returned %s", resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
