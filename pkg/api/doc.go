/*
Package api implements the burrow gRPC API server and its HTTP health
endpoints.

# Service

The burrow.v1.Scheduler service is described by a hand-written
grpc.ServiceDesc (SchedulerServiceDesc) and carries JSON-encoded messages
through Codec. Servers install the codec with grpc.ForceServerCodec; clients
pass CallOptions to every call or as default call options on the connection.

Mutations:
  - RegisterNode, DeregisterNode, SetNodeLoad
  - AddImage, RemoveImage, SetImagePorts
  - Drain: one queue-drain attempt
  - JoinCluster: add a manager as a raft voter
  - LeaveCluster: remove a manager from the raft configuration
  - CreateToken, RevokeToken, ListTokens: expiring operator tokens held by
    the manager that issued them

Queries:
  - GetCounts, GetImageStatus, GetPendingCount
  - GetNodeImages, GetImageHosts, GetNodeActive, GetImagePorts
  - GetClusterInfo
  - WatchNotifications: server stream of committed notifications

# Transport

NewServer takes the TLS configuration of the TCP listener, normally built by
security.ServerTLSConfig: the server presents a certificate from the cluster
CA and verifies client certificates when offered, or requires them. The Unix
socket uses gRPC local credentials.

# Authentication

Mutating calls need "authorization: Bearer <token>" metadata. AuthInterceptor
resolves the token through the manager's token manager and stores the
resulting principal in the request context; handlers forward it to the
engine, which rejects non-operators. Query methods (Get*, Watch*) pass
without a token. StreamAuthInterceptor applies the same rules to streaming
methods.

The Unix socket listener started by StartUnix serves queries only;
ReadOnlyInterceptor and StreamReadOnlyInterceptor reject everything else
with PermissionDenied.

# Error Mapping

	engine.ErrUnauthorized  -> PermissionDenied
	engine.ErrValidation    -> InvalidArgument
	manager.ErrNotLeader    -> FailedPrecondition
	anything else           -> Internal

Missing or invalid tokens fail with Unauthenticated before reaching a
handler.

# Health

HealthServer serves /health (liveness with version), /ready (raft leader
known, store write-through healthy and every other critical component in
the metrics registry ready), /live, /components and /metrics. A nil manager
is allowed and reports not ready.
*/
package api
