// Package grpcserver provides server-side bearer token authentication for gRPC services.
//
// Incoming tokens are resolved via the token info endpoint, the same way as in httpserver. The token
// info document is made available to service handlers, and a second interceptor can require scopes.
//
// # Quick Start
//
//	opts, err := grpcserver.NewInterceptorBuilder("https://auth.example.com/oauth2/tokeninfo").
//	    WithExemptMethods("/grpc.health.v1.Health/Check").
//	    WithRequiredScopes("nucleus.read").
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	server := grpc.NewServer(opts...)
//	pb.RegisterNucleusServer(server, &nucleusServer{})
//
// # Accessing Token Info in Handlers
//
//	func (s *nucleusServer) GetNucleus(ctx context.Context, req *pb.Request) (*pb.Response, error) {
//	    info := grpcserver.MustTokenInfoFromContext(ctx)
//	    uid, _ := info.Extra["uid"].(string)
//	    // ...
//	}
//
// # Status Codes
//
// Missing, malformed or rejected tokens yield codes.Unauthenticated (see WithUnauthorizedCode).
// Missing scopes yield codes.PermissionDenied (see WithDeniedCode). The stored token info never
// contains the access token itself.
package grpcserver
