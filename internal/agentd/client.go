package agentd

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/solana-keyring/keyring/internal/keyringerr"
)

// Client dials an already-running agent over its Unix socket.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient constructs a client for the agent listening at socketPath.
func NewClient(socketPath string, timeout time.Duration) *Client {
	return &Client{socketPath: socketPath, timeout: timeout}
}

// Call sends one request and decodes its result into out (which may be
// nil for methods with no result).
func (c *Client) Call(method string, params interface{}, out interface{}) error {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return fmt.Errorf("agentd: dial agent socket: %w", err)
	}
	defer conn.Close()

	var paramsRaw json.RawMessage
	if params != nil {
		paramsRaw, err = json.Marshal(params)
		if err != nil {
			return err
		}
	}
	reqBody, err := json.Marshal(Request{Method: method, Params: paramsRaw})
	if err != nil {
		return err
	}
	if err := writeFrame(conn, reqBody); err != nil {
		return err
	}

	respBody, err := readFrame(conn)
	if err != nil {
		return err
	}
	var resp Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return &keyringerr.Error{Code: keyringerr.Code(resp.Code), Message: resp.Message}
	}
	if out == nil || resp.Result == nil {
		return nil
	}
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
