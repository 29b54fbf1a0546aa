package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start requests the daemon to start its refresh loop.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("TAStats.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop processing.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("TAStats.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status, optionally with preflight checks.
func (c *Client) Status(withChecks bool) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("TAStats.Status", StatusRequest{WithChecks: withChecks}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Snapshot retrieves the current statistics snapshot.
func (c *Client) Snapshot() (*SnapshotResponse, error) {
	var resp SnapshotResponse
	if err := c.client.Call("TAStats.Snapshot", SnapshotRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh asks the daemon to run a refresh cycle soon.
func (c *Client) Refresh() (*RefreshResponse, error) {
	var resp RefreshResponse
	if err := c.client.Call("TAStats.Refresh", RefreshRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearAuth clears the sticky auth-failure flag.
func (c *Client) ClearAuth() (*ClearAuthResponse, error) {
	var resp ClearAuthResponse
	if err := c.client.Call("TAStats.ClearAuth", ClearAuthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("TAStats.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("TAStats.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
