// Package thunder is a minimal JSON-RPC 2.0 client for the Thunder (WPEFramework)
// OCIContainer plugin, which fronts Dobby on RDK devices.
package thunder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// DefaultCallsign is the callsign of the OCIContainer plugin.
const DefaultCallsign = "org.rdk.OCIContainer"

// controllerCallsign addresses the Thunder controller, which activates
// plugins.
const controllerCallsign = "Controller"

// RPCError is an error object returned by the server.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// ErrUnsuccessful is returned when a plugin method answers with
// "success": false.
var ErrUnsuccessful = errors.New("plugin reported failure")

// Client calls methods of one Thunder plugin.
type Client struct {
	URL      string
	Callsign string
	HTTP     *http.Client

	nextID atomic.Int64
}

// New returns a client for callsign at url with the given request timeout.
func New(url, callsign string, timeout time.Duration) *Client {
	return &Client{
		URL:      url,
		Callsign: callsign,
		HTTP:     &http.Client{Timeout: timeout},
	}
}

type request struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int64       `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// Call invokes method (without callsign and version) on the client's
// plugin and decodes the result into result when it is non-nil.
func (c *Client) Call(ctx context.Context, method string, params, result interface{}) error {
	return c.call(ctx, c.Callsign+".1."+method, params, result)
}

func (c *Client) call(ctx context.Context, method string, params, result interface{}) error {
	req := request{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected HTTP status %s", method, resp.Status)
	}

	var rpcResp response
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%s: %w", method, rpcResp.Error)
	}
	if rpcResp.ID != req.ID {
		return fmt.Errorf("%s: response id %d does not match request id %d", method, rpcResp.ID, req.ID)
	}
	if result != nil && len(rpcResp.Result) > 0 {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}
	return nil
}

// Activate asks the controller to activate the client's plugin.
func (c *Client) Activate(ctx context.Context) error {
	return c.call(ctx, controllerCallsign+".1.activate", map[string]string{"callsign": c.Callsign}, nil)
}

// Reachable reports whether the Thunder server answers at all.
func (c *Client) Reachable(ctx context.Context) bool {
	var status json.RawMessage
	return c.call(ctx, controllerCallsign+".1.status@"+c.Callsign, nil, &status) == nil
}
