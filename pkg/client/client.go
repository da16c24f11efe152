package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/cuemby/burrow/pkg/api"
	"github.com/cuemby/burrow/pkg/events"
	"github.com/cuemby/burrow/pkg/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/local"
)

const callTimeout = 10 * time.Second

// Client wraps the burrow gRPC client for easy CLI usage
type Client struct {
	conn   *grpc.ClientConn
	client api.SchedulerClient
}

// tokenCredentials attaches the operator token to every call
type tokenCredentials struct {
	token string
}

func (t tokenCredentials) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	ri, _ := credentials.RequestInfoFromContext(ctx)
	if err := credentials.CheckSecurityLevel(ri.AuthInfo, credentials.PrivacyAndIntegrity); err != nil {
		return nil, fmt.Errorf("refusing to send operator token: %w", err)
	}
	return map[string]string{"authorization": "Bearer " + t.token}, nil
}

func (t tokenCredentials) RequireTransportSecurity() bool {
	return true
}

// NewClient connects to a manager's TCP API over TLS. token may be empty
// for query-only use; mutations then fail with Unauthenticated.
func NewClient(addr, token string, tlsConfig *tls.Config) (*Client, error) {
	if tlsConfig == nil {
		return nil, fmt.Errorf("TLS configuration is required")
	}

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)),
		grpc.WithDefaultCallOptions(api.CallOptions()...),
	}
	if token != "" {
		opts = append(opts, grpc.WithPerRPCCredentials(tokenCredentials{token: token}))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial manager: %w", err)
	}

	return NewClientWithConn(conn), nil
}

// NewUnixClient connects to a manager's read-only Unix socket
func NewUnixClient(socketPath string) (*Client, error) {
	conn, err := grpc.NewClient("unix://"+socketPath,
		grpc.WithTransportCredentials(local.NewCredentials()),
		grpc.WithDefaultCallOptions(api.CallOptions()...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", socketPath, err)
	}
	return NewClientWithConn(conn), nil
}

// NewClientWithConn wraps an existing connection. The connection must
// carry api.CallOptions as default call options.
func NewClientWithConn(conn *grpc.ClientConn) *Client {
	return &Client{
		conn:   conn,
		client: api.NewSchedulerClient(conn),
	}
}

// Close closes the client connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// RegisterNode registers or reactivates a node with a sealed load
func (c *Client) RegisterNode(id string, load types.LoadHandle) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	_, err := c.client.RegisterNode(ctx, &api.NodeRequest{NodeID: id, Load: load})
	return err
}

// DeregisterNode marks a node inactive
func (c *Client) DeregisterNode(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	_, err := c.client.DeregisterNode(ctx, &api.NodeRequest{NodeID: id})
	return err
}

// SetNodeLoad replaces a node's load handle
func (c *Client) SetNodeLoad(id string, load types.LoadHandle) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	_, err := c.client.SetNodeLoad(ctx, &api.NodeRequest{NodeID: id, Load: load})
	return err
}

// AddImage creates or reactivates an image
func (c *Client) AddImage(name string, replicas uint32) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	_, err := c.client.AddImage(ctx, &api.ImageRequest{Image: name, Replicas: replicas})
	return err
}

// RemoveImage deactivates an image
func (c *Client) RemoveImage(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	_, err := c.client.RemoveImage(ctx, &api.ImageRequest{Image: name})
	return err
}

// SetImagePorts replaces an image's exposed ports
func (c *Client) SetImagePorts(name string, ports []types.PortMapping) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	_, err := c.client.SetImagePorts(ctx, &api.ImageRequest{Image: name, Ports: ports})
	return err
}

// Drain asks the leader for one queue-drain attempt
func (c *Client) Drain() error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	_, err := c.client.Drain(ctx, &api.Empty{})
	return err
}

// JoinCluster adds a manager to the raft cluster
func (c *Client) JoinCluster(nodeID, raftAddr string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := c.client.JoinCluster(ctx, &api.JoinRequest{NodeID: nodeID, RaftAddr: raftAddr})
	return err
}

// LeaveCluster removes a manager from the raft cluster
func (c *Client) LeaveCluster(nodeID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := c.client.LeaveCluster(ctx, &api.LeaveRequest{NodeID: nodeID})
	return err
}

// CreateToken asks the manager for an operator token valid for ttl
func (c *Client) CreateToken(ttl time.Duration) (*api.TokenInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	return c.client.CreateToken(ctx, &api.TokenRequest{TTL: ttl})
}

// RevokeToken invalidates a generated token by ID
func (c *Client) RevokeToken(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	_, err := c.client.RevokeToken(ctx, &api.TokenRequest{ID: id})
	return err
}

// ListTokens lists the generated tokens of the manager
func (c *Client) ListTokens() ([]api.TokenInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	resp, err := c.client.ListTokens(ctx, &api.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.Tokens, nil
}

// Counts returns the number of known nodes and images
func (c *Client) Counts() (*api.CountsResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	return c.client.GetCounts(ctx, &api.Empty{})
}

// ImageStatus returns an image's target, deployed count and active flag
func (c *Client) ImageStatus(name string) (*api.ImageStatusResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	return c.client.GetImageStatus(ctx, &api.ImageRequest{Image: name})
}

// PendingCount returns an image's queued replicas
func (c *Client) PendingCount(name string) (uint32, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	resp, err := c.client.GetPendingCount(ctx, &api.ImageRequest{Image: name})
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// NodeImages returns the image of every slot on a node
func (c *Client) NodeImages(id string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	resp, err := c.client.GetNodeImages(ctx, &api.NodeRequest{NodeID: id})
	if err != nil {
		return nil, err
	}
	return resp.Images, nil
}

// ImageHosts returns the nodes running an image
func (c *Client) ImageHosts(name string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	resp, err := c.client.GetImageHosts(ctx, &api.ImageRequest{Image: name})
	if err != nil {
		return nil, err
	}
	return resp.Nodes, nil
}

// NodeActive reports whether a node is active
func (c *Client) NodeActive(id string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	resp, err := c.client.GetNodeActive(ctx, &api.NodeRequest{NodeID: id})
	if err != nil {
		return false, err
	}
	return resp.Active, nil
}

// ImagePorts returns an image's exposed ports
func (c *Client) ImagePorts(name string) ([]types.PortMapping, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	resp, err := c.client.GetImagePorts(ctx, &api.ImageRequest{Image: name})
	if err != nil {
		return nil, err
	}
	return resp.Ports, nil
}

// ClusterInfo describes the raft cluster
func (c *Client) ClusterInfo() (*api.ClusterInfoResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	return c.client.GetClusterInfo(ctx, &api.Empty{})
}

// Watch streams notifications to fn until ctx is cancelled or the stream
// fails. A cancelled ctx returns nil.
func (c *Client) Watch(ctx context.Context, fn func(*events.Event)) error {
	stream, err := c.client.WatchNotifications(ctx, &api.WatchRequest{})
	if err != nil {
		return err
	}

	for {
		ev, err := stream.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		fn(ev)
	}
}
