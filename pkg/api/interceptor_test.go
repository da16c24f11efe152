package api

import (
	"context"
	"errors"
	"testing"

	"github.com/cuemby/burrow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type staticAuth struct {
	token     string
	principal types.Principal
}

func (a staticAuth) Authenticate(token string) (types.Principal, error) {
	if token != a.token {
		return "", errors.New("invalid token")
	}
	return a.principal, nil
}

func principalHandler(ctx context.Context, req interface{}) (interface{}, error) {
	return PrincipalFromContext(ctx), nil
}

func TestIsReadOnlyMethod(t *testing.T) {
	tests := []struct {
		method   string
		readOnly bool
	}{
		{MethodGetCounts, true},
		{MethodGetImageStatus, true},
		{MethodWatchNotifications, true},
		{MethodRegisterNode, false},
		{MethodAddImage, false},
		{MethodDrain, false},
		{MethodJoinCluster, false},
		{MethodLeaveCluster, false},
		{MethodCreateToken, false},
		{MethodRevokeToken, false},
		{MethodListTokens, false},
		{"GetCounts", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.readOnly, isReadOnlyMethod(tt.method), tt.method)
	}
}

func TestAuthInterceptor(t *testing.T) {
	interceptor := AuthInterceptor(staticAuth{token: "t0k", principal: "alice"})

	t.Run("read-only passes without token", func(t *testing.T) {
		resp, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: MethodGetCounts}, principalHandler)
		require.NoError(t, err)
		assert.Equal(t, types.Principal(""), resp)
	})

	t.Run("mutation without token", func(t *testing.T) {
		_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: MethodAddImage}, principalHandler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("mutation with bad token", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer nope"))
		_, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: MethodAddImage}, principalHandler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("mutation with valid token carries principal", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer t0k"))
		resp, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: MethodAddImage}, principalHandler)
		require.NoError(t, err)
		assert.Equal(t, types.Principal("alice"), resp)
	})
}

func TestReadOnlyInterceptor(t *testing.T) {
	interceptor := ReadOnlyInterceptor()

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: MethodGetPendingCount}, principalHandler)
	assert.NoError(t, err)

	_, err = interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: MethodRemoveImage}, principalHandler)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

// fakeStream is a server stream with a fixed context
type fakeStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s fakeStream) Context() context.Context {
	return s.ctx
}

func principalStreamHandler(seen *types.Principal) grpc.StreamHandler {
	return func(srv interface{}, ss grpc.ServerStream) error {
		*seen = PrincipalFromContext(ss.Context())
		return nil
	}
}

func TestStreamAuthInterceptor(t *testing.T) {
	interceptor := StreamAuthInterceptor(staticAuth{token: "t0k", principal: "alice"})
	const mutatingStream = "/" + ServiceName + "/StreamChanges"

	t.Run("watch passes without token", func(t *testing.T) {
		var seen types.Principal
		err := interceptor(nil, fakeStream{ctx: context.Background()},
			&grpc.StreamServerInfo{FullMethod: MethodWatchNotifications}, principalStreamHandler(&seen))
		require.NoError(t, err)
		assert.Equal(t, types.Principal(""), seen)
	})

	t.Run("mutating stream without token", func(t *testing.T) {
		var seen types.Principal
		err := interceptor(nil, fakeStream{ctx: context.Background()},
			&grpc.StreamServerInfo{FullMethod: mutatingStream}, principalStreamHandler(&seen))
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("mutating stream with bad token", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer nope"))
		var seen types.Principal
		err := interceptor(nil, fakeStream{ctx: ctx},
			&grpc.StreamServerInfo{FullMethod: mutatingStream}, principalStreamHandler(&seen))
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("mutating stream with valid token carries principal", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer t0k"))
		var seen types.Principal
		err := interceptor(nil, fakeStream{ctx: ctx},
			&grpc.StreamServerInfo{FullMethod: mutatingStream}, principalStreamHandler(&seen))
		require.NoError(t, err)
		assert.Equal(t, types.Principal("alice"), seen)
	})
}

func TestStreamReadOnlyInterceptor(t *testing.T) {
	interceptor := StreamReadOnlyInterceptor()
	var seen types.Principal

	err := interceptor(nil, fakeStream{ctx: context.Background()},
		&grpc.StreamServerInfo{FullMethod: MethodWatchNotifications}, principalStreamHandler(&seen))
	assert.NoError(t, err)

	err = interceptor(nil, fakeStream{ctx: context.Background()},
		&grpc.StreamServerInfo{FullMethod: "/" + ServiceName + "/StreamChanges"}, principalStreamHandler(&seen))
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestMethodName(t *testing.T) {
	assert.Equal(t, "GetCounts", methodName(MethodGetCounts))
	assert.Equal(t, "plain", methodName("plain"))
}
