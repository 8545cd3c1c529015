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

// Stop requests the daemon to shut down.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Reelgate.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Reelgate.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FilterList returns the rule list in evaluation order.
func (c *Client) FilterList() (*FilterListResponse, error) {
	var resp FilterListResponse
	if err := c.client.Call("Reelgate.FilterList", FilterListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FilterAdd appends a new default rule.
func (c *Client) FilterAdd() (*FilterAddResponse, error) {
	var resp FilterAddResponse
	if err := c.client.Call("Reelgate.FilterAdd", FilterAddRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FilterUpdate merges fields into an existing rule.
func (c *Client) FilterUpdate(req FilterUpdateRequest) (*FilterUpdateResponse, error) {
	var resp FilterUpdateResponse
	if err := c.client.Call("Reelgate.FilterUpdate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FilterToggle flips a rule's enabled flag.
func (c *Client) FilterToggle(id string) (*FilterToggleResponse, error) {
	var resp FilterToggleResponse
	if err := c.client.Call("Reelgate.FilterToggle", FilterToggleRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FilterDelete removes a rule.
func (c *Client) FilterDelete(id string) (*FilterDeleteResponse, error) {
	var resp FilterDeleteResponse
	if err := c.client.Call("Reelgate.FilterDelete", FilterDeleteRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FilterReset empties the rule list.
func (c *Client) FilterReset() (*FilterResetResponse, error) {
	var resp FilterResetResponse
	if err := c.client.Call("Reelgate.FilterReset", FilterResetRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BatchList returns all batches, newest first.
func (c *Client) BatchList() (*BatchListResponse, error) {
	var resp BatchListResponse
	if err := c.client.Call("Reelgate.BatchList", BatchListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BatchAdd submits every candidate scene on a catalog page.
func (c *Client) BatchAdd(page string) (*BatchAddResponse, error) {
	var resp BatchAddResponse
	if err := c.client.Call("Reelgate.BatchAdd", BatchAddRequest{Page: page}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SceneAdd submits a single scene.
func (c *Client) SceneAdd(stashID string) (*SceneAddResponse, error) {
	var resp SceneAddResponse
	if err := c.client.Call("Reelgate.SceneAdd", SceneAddRequest{StashID: stashID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SceneRetry resubmits one error scene.
func (c *Client) SceneRetry(batchID, stashID string) (*SceneRetryResponse, error) {
	var resp SceneRetryResponse
	req := SceneRetryRequest{BatchID: batchID, StashID: stashID}
	if err := c.client.Call("Reelgate.SceneRetry", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RetryAll resubmits every error scene across all batches.
func (c *Client) RetryAll() (*RetryAllResponse, error) {
	var resp RetryAllResponse
	if err := c.client.Call("Reelgate.RetryAll", RetryAllRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BatchCancel stops processing the remaining scenes of a batch.
func (c *Client) BatchCancel(batchID string) (*BatchCancelResponse, error) {
	var resp BatchCancelResponse
	if err := c.client.Call("Reelgate.BatchCancel", BatchCancelRequest{BatchID: batchID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SceneUndo removes a previously added scene from the media server.
func (c *Client) SceneUndo(batchID, stashID string) (*SceneUndoResponse, error) {
	var resp SceneUndoResponse
	req := SceneUndoRequest{BatchID: batchID, StashID: stashID}
	if err := c.client.Call("Reelgate.SceneUndo", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BatchClear drops all batch history.
func (c *Client) BatchClear() (*BatchClearResponse, error) {
	var resp BatchClearResponse
	if err := c.client.Call("Reelgate.BatchClear", BatchClearRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Reelgate.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
