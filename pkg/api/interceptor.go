package api

import (
	"context"
	"strings"

	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Authenticator resolves a bearer token to a principal
type Authenticator interface {
	Authenticate(token string) (types.Principal, error)
}

type principalKey struct{}

// WithPrincipal returns a context carrying p
func WithPrincipal(ctx context.Context, p types.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the authenticated principal, or "" when the
// call carried no valid token
func PrincipalFromContext(ctx context.Context) types.Principal {
	p, _ := ctx.Value(principalKey{}).(types.Principal)
	return p
}

// AuthInterceptor creates a gRPC unary interceptor that authenticates
// mutating calls. Read-only methods pass without a token; every other method
// needs "authorization: Bearer <token>" metadata resolving to a principal.
func AuthInterceptor(auth Authenticator) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if isReadOnlyMethod(info.FullMethod) {
			return handler(ctx, req)
		}

		token := bearerToken(ctx)
		if token == "" {
			return nil, status.Error(codes.Unauthenticated, "missing bearer token")
		}
		principal, err := auth.Authenticate(token)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "authentication failed: %v", err)
		}

		return handler(WithPrincipal(ctx, principal), req)
	}
}

// StreamAuthInterceptor applies the AuthInterceptor rules to streaming
// methods. The principal is attached to the stream's context.
func StreamAuthInterceptor(auth Authenticator) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if isReadOnlyMethod(info.FullMethod) {
			return handler(srv, ss)
		}

		token := bearerToken(ss.Context())
		if token == "" {
			return status.Error(codes.Unauthenticated, "missing bearer token")
		}
		principal, err := auth.Authenticate(token)
		if err != nil {
			return status.Errorf(codes.Unauthenticated, "authentication failed: %v", err)
		}

		return handler(srv, &principalStream{ServerStream: ss, ctx: WithPrincipal(ss.Context(), principal)})
	}
}

// principalStream overrides the context of a server stream
type principalStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *principalStream) Context() context.Context {
	return s.ctx
}

// ReadOnlyInterceptor creates a gRPC unary interceptor that only allows read-only operations.
// This is used for the Unix socket listener, which serves local inspection only.
func ReadOnlyInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		// Check if this is a read-only method
		if !isReadOnlyMethod(info.FullMethod) {
			return nil, status.Errorf(
				codes.PermissionDenied,
				"write operations not allowed on Unix socket - use the TCP API with an operator token",
			)
		}

		// Allow read-only operations
		return handler(ctx, req)
	}
}

// StreamReadOnlyInterceptor rejects streaming methods that are not read-only
func StreamReadOnlyInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if !isReadOnlyMethod(info.FullMethod) {
			return status.Errorf(
				codes.PermissionDenied,
				"write operations not allowed on Unix socket - use the TCP API with an operator token",
			)
		}
		return handler(srv, ss)
	}
}

// MetricsInterceptor records request counts and latency per method
func MetricsInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		method := methodName(info.FullMethod)
		timer := metrics.NewTimer()
		resp, err := handler(ctx, req)
		timer.ObserveDurationVec(metrics.APIRequestDuration, method)
		metrics.APIRequestsTotal.WithLabelValues(method, status.Code(err).String()).Inc()
		return resp, err
	}
}

func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, v := range md.Get("authorization") {
		if strings.HasPrefix(v, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(v, "Bearer "))
		}
	}
	return ""
}

// methodName extracts the method from a full path
// (e.g., "/burrow.v1.Scheduler/GetCounts" -> "GetCounts")
func methodName(fullMethod string) string {
	parts := strings.Split(fullMethod, "/")
	return parts[len(parts)-1]
}

// isReadOnlyMethod checks if a gRPC method is read-only
func isReadOnlyMethod(method string) bool {
	parts := strings.Split(method, "/")
	if len(parts) < 2 {
		return false
	}
	name := parts[len(parts)-1]

	// Read-only methods (Get*, Watch*)
	readOnlyPrefixes := []string{
		"Get",
		"Watch",
	}

	for _, prefix := range readOnlyPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	// Default: block
	return false
}
