package api

import (
	"context"

	"github.com/cuemby/burrow/pkg/events"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "burrow.v1.Scheduler"

// Full method names
const (
	MethodRegisterNode       = "/" + ServiceName + "/RegisterNode"
	MethodDeregisterNode     = "/" + ServiceName + "/DeregisterNode"
	MethodSetNodeLoad        = "/" + ServiceName + "/SetNodeLoad"
	MethodAddImage           = "/" + ServiceName + "/AddImage"
	MethodRemoveImage        = "/" + ServiceName + "/RemoveImage"
	MethodSetImagePorts      = "/" + ServiceName + "/SetImagePorts"
	MethodDrain              = "/" + ServiceName + "/Drain"
	MethodJoinCluster        = "/" + ServiceName + "/JoinCluster"
	MethodLeaveCluster       = "/" + ServiceName + "/LeaveCluster"
	MethodCreateToken        = "/" + ServiceName + "/CreateToken"
	MethodRevokeToken        = "/" + ServiceName + "/RevokeToken"
	MethodListTokens         = "/" + ServiceName + "/ListTokens"
	MethodGetCounts          = "/" + ServiceName + "/GetCounts"
	MethodGetImageStatus     = "/" + ServiceName + "/GetImageStatus"
	MethodGetPendingCount    = "/" + ServiceName + "/GetPendingCount"
	MethodGetNodeImages      = "/" + ServiceName + "/GetNodeImages"
	MethodGetImageHosts      = "/" + ServiceName + "/GetImageHosts"
	MethodGetNodeActive      = "/" + ServiceName + "/GetNodeActive"
	MethodGetImagePorts      = "/" + ServiceName + "/GetImagePorts"
	MethodGetClusterInfo     = "/" + ServiceName + "/GetClusterInfo"
	MethodWatchNotifications = "/" + ServiceName + "/WatchNotifications"
)

// SchedulerServer is the server API for the scheduler service
type SchedulerServer interface {
	RegisterNode(context.Context, *NodeRequest) (*Empty, error)
	DeregisterNode(context.Context, *NodeRequest) (*Empty, error)
	SetNodeLoad(context.Context, *NodeRequest) (*Empty, error)
	AddImage(context.Context, *ImageRequest) (*Empty, error)
	RemoveImage(context.Context, *ImageRequest) (*Empty, error)
	SetImagePorts(context.Context, *ImageRequest) (*Empty, error)
	Drain(context.Context, *Empty) (*Empty, error)
	JoinCluster(context.Context, *JoinRequest) (*Empty, error)
	LeaveCluster(context.Context, *LeaveRequest) (*Empty, error)
	CreateToken(context.Context, *TokenRequest) (*TokenInfo, error)
	RevokeToken(context.Context, *TokenRequest) (*Empty, error)
	ListTokens(context.Context, *Empty) (*TokenListResponse, error)
	GetCounts(context.Context, *Empty) (*CountsResponse, error)
	GetImageStatus(context.Context, *ImageRequest) (*ImageStatusResponse, error)
	GetPendingCount(context.Context, *ImageRequest) (*PendingCountResponse, error)
	GetNodeImages(context.Context, *NodeRequest) (*NodeImagesResponse, error)
	GetImageHosts(context.Context, *ImageRequest) (*ImageHostsResponse, error)
	GetNodeActive(context.Context, *NodeRequest) (*NodeActiveResponse, error)
	GetImagePorts(context.Context, *ImageRequest) (*ImagePortsResponse, error)
	GetClusterInfo(context.Context, *Empty) (*ClusterInfoResponse, error)
	WatchNotifications(*WatchRequest, grpc.ServerStreamingServer[events.Event]) error
}

// UnimplementedSchedulerServer returns Unimplemented for every method
type UnimplementedSchedulerServer struct{}

func (UnimplementedSchedulerServer) RegisterNode(context.Context, *NodeRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method RegisterNode not implemented")
}

func (UnimplementedSchedulerServer) DeregisterNode(context.Context, *NodeRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeregisterNode not implemented")
}

func (UnimplementedSchedulerServer) SetNodeLoad(context.Context, *NodeRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SetNodeLoad not implemented")
}

func (UnimplementedSchedulerServer) AddImage(context.Context, *ImageRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method AddImage not implemented")
}

func (UnimplementedSchedulerServer) RemoveImage(context.Context, *ImageRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveImage not implemented")
}

func (UnimplementedSchedulerServer) SetImagePorts(context.Context, *ImageRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SetImagePorts not implemented")
}

func (UnimplementedSchedulerServer) Drain(context.Context, *Empty) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Drain not implemented")
}

func (UnimplementedSchedulerServer) JoinCluster(context.Context, *JoinRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method JoinCluster not implemented")
}

func (UnimplementedSchedulerServer) LeaveCluster(context.Context, *LeaveRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method LeaveCluster not implemented")
}

func (UnimplementedSchedulerServer) CreateToken(context.Context, *TokenRequest) (*TokenInfo, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateToken not implemented")
}

func (UnimplementedSchedulerServer) RevokeToken(context.Context, *TokenRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method RevokeToken not implemented")
}

func (UnimplementedSchedulerServer) ListTokens(context.Context, *Empty) (*TokenListResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListTokens not implemented")
}

func (UnimplementedSchedulerServer) GetCounts(context.Context, *Empty) (*CountsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetCounts not implemented")
}

func (UnimplementedSchedulerServer) GetImageStatus(context.Context, *ImageRequest) (*ImageStatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetImageStatus not implemented")
}

func (UnimplementedSchedulerServer) GetPendingCount(context.Context, *ImageRequest) (*PendingCountResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPendingCount not implemented")
}

func (UnimplementedSchedulerServer) GetNodeImages(context.Context, *NodeRequest) (*NodeImagesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetNodeImages not implemented")
}

func (UnimplementedSchedulerServer) GetImageHosts(context.Context, *ImageRequest) (*ImageHostsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetImageHosts not implemented")
}

func (UnimplementedSchedulerServer) GetNodeActive(context.Context, *NodeRequest) (*NodeActiveResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetNodeActive not implemented")
}

func (UnimplementedSchedulerServer) GetImagePorts(context.Context, *ImageRequest) (*ImagePortsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetImagePorts not implemented")
}

func (UnimplementedSchedulerServer) GetClusterInfo(context.Context, *Empty) (*ClusterInfoResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetClusterInfo not implemented")
}

func (UnimplementedSchedulerServer) WatchNotifications(*WatchRequest, grpc.ServerStreamingServer[events.Event]) error {
	return status.Error(codes.Unimplemented, "method WatchNotifications not implemented")
}

// RegisterSchedulerServer registers srv on s
func RegisterSchedulerServer(s grpc.ServiceRegistrar, srv SchedulerServer) {
	s.RegisterService(&SchedulerServiceDesc, srv)
}

func _Scheduler_RegisterNode_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(NodeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).RegisterNode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodRegisterNode,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).RegisterNode(ctx, req.(*NodeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_DeregisterNode_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(NodeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).DeregisterNode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodDeregisterNode,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).DeregisterNode(ctx, req.(*NodeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_SetNodeLoad_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(NodeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).SetNodeLoad(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodSetNodeLoad,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).SetNodeLoad(ctx, req.(*NodeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_AddImage_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ImageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).AddImage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodAddImage,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).AddImage(ctx, req.(*ImageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_RemoveImage_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ImageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).RemoveImage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodRemoveImage,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).RemoveImage(ctx, req.(*ImageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_SetImagePorts_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ImageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).SetImagePorts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodSetImagePorts,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).SetImagePorts(ctx, req.(*ImageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_Drain_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).Drain(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodDrain,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).Drain(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_JoinCluster_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(JoinRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).JoinCluster(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodJoinCluster,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).JoinCluster(ctx, req.(*JoinRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_LeaveCluster_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(LeaveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).LeaveCluster(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodLeaveCluster,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).LeaveCluster(ctx, req.(*LeaveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_CreateToken_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TokenRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).CreateToken(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodCreateToken,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).CreateToken(ctx, req.(*TokenRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_RevokeToken_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TokenRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).RevokeToken(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodRevokeToken,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).RevokeToken(ctx, req.(*TokenRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_ListTokens_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).ListTokens(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodListTokens,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).ListTokens(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_GetCounts_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).GetCounts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodGetCounts,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).GetCounts(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_GetImageStatus_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ImageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).GetImageStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodGetImageStatus,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).GetImageStatus(ctx, req.(*ImageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_GetPendingCount_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ImageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).GetPendingCount(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodGetPendingCount,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).GetPendingCount(ctx, req.(*ImageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_GetNodeImages_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(NodeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).GetNodeImages(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodGetNodeImages,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).GetNodeImages(ctx, req.(*NodeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_GetImageHosts_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ImageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).GetImageHosts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodGetImageHosts,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).GetImageHosts(ctx, req.(*ImageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_GetNodeActive_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(NodeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).GetNodeActive(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodGetNodeActive,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).GetNodeActive(ctx, req.(*NodeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_GetImagePorts_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ImageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).GetImagePorts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodGetImagePorts,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).GetImagePorts(ctx, req.(*ImageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_GetClusterInfo_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).GetClusterInfo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodGetClusterInfo,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulerServer).GetClusterInfo(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_WatchNotifications_Handler(srv any, stream grpc.ServerStream) error {
	m := new(WatchRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(SchedulerServer).WatchNotifications(m, &grpc.GenericServerStream[WatchRequest, events.Event]{ServerStream: stream})
}

// SchedulerServiceDesc describes the scheduler service for grpc.Server
var SchedulerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SchedulerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RegisterNode",
			Handler:    _Scheduler_RegisterNode_Handler,
		},
		{
			MethodName: "DeregisterNode",
			Handler:    _Scheduler_DeregisterNode_Handler,
		},
		{
			MethodName: "SetNodeLoad",
			Handler:    _Scheduler_SetNodeLoad_Handler,
		},
		{
			MethodName: "AddImage",
			Handler:    _Scheduler_AddImage_Handler,
		},
		{
			MethodName: "RemoveImage",
			Handler:    _Scheduler_RemoveImage_Handler,
		},
		{
			MethodName: "SetImagePorts",
			Handler:    _Scheduler_SetImagePorts_Handler,
		},
		{
			MethodName: "Drain",
			Handler:    _Scheduler_Drain_Handler,
		},
		{
			MethodName: "JoinCluster",
			Handler:    _Scheduler_JoinCluster_Handler,
		},
		{
			MethodName: "LeaveCluster",
			Handler:    _Scheduler_LeaveCluster_Handler,
		},
		{
			MethodName: "CreateToken",
			Handler:    _Scheduler_CreateToken_Handler,
		},
		{
			MethodName: "RevokeToken",
			Handler:    _Scheduler_RevokeToken_Handler,
		},
		{
			MethodName: "ListTokens",
			Handler:    _Scheduler_ListTokens_Handler,
		},
		{
			MethodName: "GetCounts",
			Handler:    _Scheduler_GetCounts_Handler,
		},
		{
			MethodName: "GetImageStatus",
			Handler:    _Scheduler_GetImageStatus_Handler,
		},
		{
			MethodName: "GetPendingCount",
			Handler:    _Scheduler_GetPendingCount_Handler,
		},
		{
			MethodName: "GetNodeImages",
			Handler:    _Scheduler_GetNodeImages_Handler,
		},
		{
			MethodName: "GetImageHosts",
			Handler:    _Scheduler_GetImageHosts_Handler,
		},
		{
			MethodName: "GetNodeActive",
			Handler:    _Scheduler_GetNodeActive_Handler,
		},
		{
			MethodName: "GetImagePorts",
			Handler:    _Scheduler_GetImagePorts_Handler,
		},
		{
			MethodName: "GetClusterInfo",
			Handler:    _Scheduler_GetClusterInfo_Handler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchNotifications",
			Handler:       _Scheduler_WatchNotifications_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "burrow/v1/scheduler",
}

// SchedulerClient is the client API for the scheduler service
type SchedulerClient interface {
	RegisterNode(ctx context.Context, in *NodeRequest, opts ...grpc.CallOption) (*Empty, error)
	DeregisterNode(ctx context.Context, in *NodeRequest, opts ...grpc.CallOption) (*Empty, error)
	SetNodeLoad(ctx context.Context, in *NodeRequest, opts ...grpc.CallOption) (*Empty, error)
	AddImage(ctx context.Context, in *ImageRequest, opts ...grpc.CallOption) (*Empty, error)
	RemoveImage(ctx context.Context, in *ImageRequest, opts ...grpc.CallOption) (*Empty, error)
	SetImagePorts(ctx context.Context, in *ImageRequest, opts ...grpc.CallOption) (*Empty, error)
	Drain(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
	JoinCluster(ctx context.Context, in *JoinRequest, opts ...grpc.CallOption) (*Empty, error)
	LeaveCluster(ctx context.Context, in *LeaveRequest, opts ...grpc.CallOption) (*Empty, error)
	CreateToken(ctx context.Context, in *TokenRequest, opts ...grpc.CallOption) (*TokenInfo, error)
	RevokeToken(ctx context.Context, in *TokenRequest, opts ...grpc.CallOption) (*Empty, error)
	ListTokens(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*TokenListResponse, error)
	GetCounts(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*CountsResponse, error)
	GetImageStatus(ctx context.Context, in *ImageRequest, opts ...grpc.CallOption) (*ImageStatusResponse, error)
	GetPendingCount(ctx context.Context, in *ImageRequest, opts ...grpc.CallOption) (*PendingCountResponse, error)
	GetNodeImages(ctx context.Context, in *NodeRequest, opts ...grpc.CallOption) (*NodeImagesResponse, error)
	GetImageHosts(ctx context.Context, in *ImageRequest, opts ...grpc.CallOption) (*ImageHostsResponse, error)
	GetNodeActive(ctx context.Context, in *NodeRequest, opts ...grpc.CallOption) (*NodeActiveResponse, error)
	GetImagePorts(ctx context.Context, in *ImageRequest, opts ...grpc.CallOption) (*ImagePortsResponse, error)
	GetClusterInfo(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ClusterInfoResponse, error)
	WatchNotifications(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[events.Event], error)
}

type schedulerClient struct {
	cc grpc.ClientConnInterface
}

// NewSchedulerClient creates a client stub. The connection must use Codec,
// see CallOptions.
func NewSchedulerClient(cc grpc.ClientConnInterface) SchedulerClient {
	return &schedulerClient{cc}
}

// CallOptions returns the default call options for the scheduler service
func CallOptions() []grpc.CallOption {
	return []grpc.CallOption{grpc.ForceCodec(Codec{})}
}

func (c *schedulerClient) RegisterNode(ctx context.Context, in *NodeRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, MethodRegisterNode, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) DeregisterNode(ctx context.Context, in *NodeRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, MethodDeregisterNode, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) SetNodeLoad(ctx context.Context, in *NodeRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, MethodSetNodeLoad, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) AddImage(ctx context.Context, in *ImageRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, MethodAddImage, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) RemoveImage(ctx context.Context, in *ImageRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, MethodRemoveImage, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) SetImagePorts(ctx context.Context, in *ImageRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, MethodSetImagePorts, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) Drain(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, MethodDrain, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) JoinCluster(ctx context.Context, in *JoinRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, MethodJoinCluster, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) LeaveCluster(ctx context.Context, in *LeaveRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, MethodLeaveCluster, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) CreateToken(ctx context.Context, in *TokenRequest, opts ...grpc.CallOption) (*TokenInfo, error) {
	out := new(TokenInfo)
	if err := c.cc.Invoke(ctx, MethodCreateToken, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) RevokeToken(ctx context.Context, in *TokenRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, MethodRevokeToken, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) ListTokens(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*TokenListResponse, error) {
	out := new(TokenListResponse)
	if err := c.cc.Invoke(ctx, MethodListTokens, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) GetCounts(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*CountsResponse, error) {
	out := new(CountsResponse)
	if err := c.cc.Invoke(ctx, MethodGetCounts, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) GetImageStatus(ctx context.Context, in *ImageRequest, opts ...grpc.CallOption) (*ImageStatusResponse, error) {
	out := new(ImageStatusResponse)
	if err := c.cc.Invoke(ctx, MethodGetImageStatus, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) GetPendingCount(ctx context.Context, in *ImageRequest, opts ...grpc.CallOption) (*PendingCountResponse, error) {
	out := new(PendingCountResponse)
	if err := c.cc.Invoke(ctx, MethodGetPendingCount, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) GetNodeImages(ctx context.Context, in *NodeRequest, opts ...grpc.CallOption) (*NodeImagesResponse, error) {
	out := new(NodeImagesResponse)
	if err := c.cc.Invoke(ctx, MethodGetNodeImages, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) GetImageHosts(ctx context.Context, in *ImageRequest, opts ...grpc.CallOption) (*ImageHostsResponse, error) {
	out := new(ImageHostsResponse)
	if err := c.cc.Invoke(ctx, MethodGetImageHosts, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) GetNodeActive(ctx context.Context, in *NodeRequest, opts ...grpc.CallOption) (*NodeActiveResponse, error) {
	out := new(NodeActiveResponse)
	if err := c.cc.Invoke(ctx, MethodGetNodeActive, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) GetImagePorts(ctx context.Context, in *ImageRequest, opts ...grpc.CallOption) (*ImagePortsResponse, error) {
	out := new(ImagePortsResponse)
	if err := c.cc.Invoke(ctx, MethodGetImagePorts, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) GetClusterInfo(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ClusterInfoResponse, error) {
	out := new(ClusterInfoResponse)
	if err := c.cc.Invoke(ctx, MethodGetClusterInfo, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) WatchNotifications(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[events.Event], error) {
	stream, err := c.cc.NewStream(ctx, &SchedulerServiceDesc.Streams[0], MethodWatchNotifications, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[WatchRequest, events.Event]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
