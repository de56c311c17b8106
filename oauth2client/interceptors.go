package oauth2client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// UnaryClientInterceptor returns a gRPC unary client interceptor that adds the token cached under
// name as "authorization: Bearer <token>" to the outgoing metadata.
//
// Usage:
//
//	conn, err := grpc.NewClient(
//	    "server:9090",
//	    grpc.WithUnaryInterceptor(cache.UnaryClientInterceptor("nucleus")),
//	)
func (c *TokenCache) UnaryClientInterceptor(name string) grpc.UnaryClientInterceptor {
	resolve := c.ResolveAccessTokenFactory(name)

	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		token, err := resolve(ctx)
		if err != nil {
			return fmt.Errorf("oauth2client: failed to get token %q: %w", name, err)
		}

		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)

		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// StreamClientInterceptor is the streaming counterpart of UnaryClientInterceptor.
func (c *TokenCache) StreamClientInterceptor(name string) grpc.StreamClientInterceptor {
	resolve := c.ResolveAccessTokenFactory(name)

	return func(
		ctx context.Context,
		desc *grpc.StreamDesc,
		cc *grpc.ClientConn,
		method string,
		streamer grpc.Streamer,
		opts ...grpc.CallOption,
	) (grpc.ClientStream, error) {
		token, err := resolve(ctx)
		if err != nil {
			return nil, fmt.Errorf("oauth2client: failed to get token %q: %w", name, err)
		}

		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)

		return streamer(ctx, desc, cc, method, opts...)
	}
}
