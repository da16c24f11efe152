package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/cuemby/burrow/pkg/engine"
	"github.com/cuemby/burrow/pkg/events"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/manager"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/local"
	"google.golang.org/grpc/status"
)

// Server implements the burrow.v1.Scheduler gRPC service
type Server struct {
	UnimplementedSchedulerServer
	manager *manager.Manager
	grpc    *grpc.Server
	local   *grpc.Server
	logger  zerolog.Logger
}

// NewServer creates a new API server. The TCP listener serves TLS with
// tlsConfig; the Unix socket uses local credentials.
func NewServer(mgr *manager.Manager, tlsConfig *tls.Config) (*Server, error) {
	if tlsConfig == nil {
		return nil, fmt.Errorf("TLS configuration is required")
	}

	s := &Server{
		manager: mgr,
		logger:  log.WithComponent("api"),
	}

	s.grpc = grpc.NewServer(
		grpc.Creds(credentials.NewTLS(tlsConfig)),
		grpc.ForceServerCodec(Codec{}),
		grpc.ChainUnaryInterceptor(MetricsInterceptor(), AuthInterceptor(mgr)),
		grpc.ChainStreamInterceptor(StreamAuthInterceptor(mgr)),
	)
	RegisterSchedulerServer(s.grpc, s)

	s.local = grpc.NewServer(
		grpc.Creds(local.NewCredentials()),
		grpc.ForceServerCodec(Codec{}),
		grpc.ChainUnaryInterceptor(MetricsInterceptor(), ReadOnlyInterceptor()),
		grpc.ChainStreamInterceptor(StreamReadOnlyInterceptor()),
	)
	RegisterSchedulerServer(s.local, s)

	return s, nil
}

// Start starts the gRPC server
func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(lis)
}

// Serve accepts connections on lis until Stop is called
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info().Str("addr", lis.Addr().String()).Msg("gRPC API listening")
	return s.grpc.Serve(lis)
}

// StartUnix serves the read-only API on a Unix socket
func (s *Server) StartUnix(path string) error {
	_ = os.Remove(path)
	lis, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", path, err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		lis.Close()
		return fmt.Errorf("failed to restrict socket permissions: %w", err)
	}

	s.logger.Info().Str("socket", path).Msg("Read-only API listening")
	return s.local.Serve(lis)
}

// Stop gracefully stops the gRPC servers
func (s *Server) Stop() {
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
	if s.local != nil {
		s.local.GracefulStop()
	}
}

// toStatus maps domain errors onto gRPC status codes
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, engine.ErrUnauthorized):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, engine.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, manager.ErrNotLeader):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// RegisterNode adds or reactivates a node
func (s *Server) RegisterNode(ctx context.Context, req *NodeRequest) (*Empty, error) {
	if err := s.manager.RegisterNode(PrincipalFromContext(ctx), req.NodeID, req.Load); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// DeregisterNode marks a node inactive and requeues its containers
func (s *Server) DeregisterNode(ctx context.Context, req *NodeRequest) (*Empty, error) {
	if err := s.manager.DeregisterNode(PrincipalFromContext(ctx), req.NodeID); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// SetNodeLoad replaces a node's load handle
func (s *Server) SetNodeLoad(ctx context.Context, req *NodeRequest) (*Empty, error) {
	if err := s.manager.SetNodeLoad(PrincipalFromContext(ctx), req.NodeID, req.Load); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// AddImage creates or reactivates an image
func (s *Server) AddImage(ctx context.Context, req *ImageRequest) (*Empty, error) {
	if err := s.manager.AddImage(PrincipalFromContext(ctx), req.Image, req.Replicas); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// RemoveImage deactivates an image and evicts its containers
func (s *Server) RemoveImage(ctx context.Context, req *ImageRequest) (*Empty, error) {
	if err := s.manager.RemoveImage(PrincipalFromContext(ctx), req.Image); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// SetImagePorts replaces an image's exposed ports
func (s *Server) SetImagePorts(ctx context.Context, req *ImageRequest) (*Empty, error) {
	if err := s.manager.SetImagePorts(PrincipalFromContext(ctx), req.Image, req.Ports); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// Drain makes one placement attempt for the first image with queued replicas
func (s *Server) Drain(ctx context.Context, req *Empty) (*Empty, error) {
	if err := s.manager.Drain(PrincipalFromContext(ctx)); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// JoinCluster adds a manager to the raft cluster
func (s *Server) JoinCluster(ctx context.Context, req *JoinRequest) (*Empty, error) {
	if PrincipalFromContext(ctx) != s.manager.Operator() {
		return nil, toStatus(engine.ErrUnauthorized)
	}
	if req.NodeID == "" || req.RaftAddr == "" {
		return nil, status.Error(codes.InvalidArgument, "node id and raft address are required")
	}
	if err := s.manager.AddVoter(req.NodeID, req.RaftAddr); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// LeaveCluster removes a manager from the raft cluster
func (s *Server) LeaveCluster(ctx context.Context, req *LeaveRequest) (*Empty, error) {
	if PrincipalFromContext(ctx) != s.manager.Operator() {
		return nil, toStatus(engine.ErrUnauthorized)
	}
	if req.NodeID == "" {
		return nil, status.Error(codes.InvalidArgument, "node id is required")
	}
	if err := s.manager.RemoveServer(req.NodeID); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// CreateToken generates an operator token on this manager
func (s *Server) CreateToken(ctx context.Context, req *TokenRequest) (*TokenInfo, error) {
	if PrincipalFromContext(ctx) != s.manager.Operator() {
		return nil, toStatus(engine.ErrUnauthorized)
	}
	tok, err := s.manager.GenerateToken(req.TTL)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return &TokenInfo{
		ID:        tok.ID,
		Token:     tok.Token,
		CreatedAt: tok.CreatedAt,
		ExpiresAt: tok.ExpiresAt,
	}, nil
}

// RevokeToken invalidates a generated token
func (s *Server) RevokeToken(ctx context.Context, req *TokenRequest) (*Empty, error) {
	if PrincipalFromContext(ctx) != s.manager.Operator() {
		return nil, toStatus(engine.ErrUnauthorized)
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "token id is required")
	}
	if !s.manager.RevokeToken(req.ID) {
		return nil, status.Errorf(codes.NotFound, "token %s not found", req.ID)
	}
	return &Empty{}, nil
}

// ListTokens describes the generated tokens without their secrets
func (s *Server) ListTokens(ctx context.Context, req *Empty) (*TokenListResponse, error) {
	if PrincipalFromContext(ctx) != s.manager.Operator() {
		return nil, toStatus(engine.ErrUnauthorized)
	}
	resp := &TokenListResponse{}
	for _, tok := range s.manager.ListTokens() {
		resp.Tokens = append(resp.Tokens, TokenInfo{
			ID:        tok.ID,
			CreatedAt: tok.CreatedAt,
			ExpiresAt: tok.ExpiresAt,
		})
	}
	return resp, nil
}

// GetCounts returns the number of known nodes and images
func (s *Server) GetCounts(ctx context.Context, req *Empty) (*CountsResponse, error) {
	e := s.manager.Engine()
	return &CountsResponse{Nodes: e.NodeCount(), Images: e.ImageCount()}, nil
}

// GetImageStatus returns an image's target, deployed count and active flag
func (s *Server) GetImageStatus(ctx context.Context, req *ImageRequest) (*ImageStatusResponse, error) {
	st := s.manager.Engine().ImageStatus(req.Image)
	return &ImageStatusResponse{Replicas: st.Replicas, Deployed: st.Deployed, Active: st.Active}, nil
}

// GetPendingCount returns an image's queued replicas
func (s *Server) GetPendingCount(ctx context.Context, req *ImageRequest) (*PendingCountResponse, error) {
	return &PendingCountResponse{Count: s.manager.Engine().PendingCount(req.Image)}, nil
}

// GetNodeImages returns the image of every slot on a node
func (s *Server) GetNodeImages(ctx context.Context, req *NodeRequest) (*NodeImagesResponse, error) {
	return &NodeImagesResponse{Images: s.manager.Engine().NodeImages(req.NodeID)}, nil
}

// GetImageHosts returns the nodes running an image
func (s *Server) GetImageHosts(ctx context.Context, req *ImageRequest) (*ImageHostsResponse, error) {
	return &ImageHostsResponse{Nodes: s.manager.Engine().ImageHosts(req.Image)}, nil
}

// GetNodeActive reports whether a node is active
func (s *Server) GetNodeActive(ctx context.Context, req *NodeRequest) (*NodeActiveResponse, error) {
	return &NodeActiveResponse{Active: s.manager.Engine().NodeActive(req.NodeID)}, nil
}

// GetImagePorts returns an image's exposed ports
func (s *Server) GetImagePorts(ctx context.Context, req *ImageRequest) (*ImagePortsResponse, error) {
	return &ImagePortsResponse{Ports: s.manager.Engine().ImagePorts(req.Image)}, nil
}

// GetClusterInfo describes the raft cluster
func (s *Server) GetClusterInfo(ctx context.Context, req *Empty) (*ClusterInfoResponse, error) {
	servers, err := s.manager.GetClusterServers()
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &ClusterInfoResponse{Leader: s.manager.LeaderAddr()}
	for _, srv := range servers {
		resp.Servers = append(resp.Servers, ClusterServer{
			ID:       string(srv.ID),
			Address:  string(srv.Address),
			Suffrage: srv.Suffrage.String(),
		})
	}
	return resp, nil
}

// WatchNotifications streams notifications committed on this manager until
// the client goes away
func (s *Server) WatchNotifications(req *WatchRequest, stream grpc.ServerStreamingServer[events.Event]) error {
	broker := s.manager.GetEventBroker()
	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub:
			if !ok {
				return status.Error(codes.Unavailable, "notification stream closed")
			}
			if err := stream.Send(ev); err != nil {
				s.logger.Debug().Err(err).Msg("Watch stream send failed")
				return err
			}
		}
	}
}
