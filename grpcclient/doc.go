// Package grpcclient provides a fluent builder for secure gRPC client connections that send
// bearer tokens from an oauth2client.TokenCache.
//
// It defaults to TLS 1.2+ using system roots to avoid accidental plaintext connections. Optional
// methods add the token interceptors, custom CA or mTLS credentials, and extra dial options.
//
// # Quick Start
//
//	conn, err := grpcclient.NewBuilder().
//	    WithAddress("nucleus.example.com:9090").
//	    WithTokenCache(cache, "nucleus").
//	    WithTLS("/path/to/ca.crt", "", "", "nucleus.example.com").
//	    Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	client := pb.NewNucleusClient(conn)
//
// Every unary and streaming call carries "authorization: Bearer <token>" metadata. The token is
// taken from the cache on each call, so expired tokens are renewed transparently. A call fails
// without reaching the server when no token can be obtained.
//
// # TLS Behavior
//
// TLS is enabled by default with system CAs and TLS 1.2 minimum. WithTLS allows supplying a custom
// root CA and optional client cert/key for mTLS; both cert and key must be provided together.
package grpcclient
