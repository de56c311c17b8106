// Package testutil provides test helpers shared by the packages of this module.
//
// # Utilities
//
//   - NewLocalHTTPServer: start httptest server bound to 127.0.0.1, closed via tb.Cleanup
//   - RoundTripFunc and JSONResponse: inline http.RoundTripper implementations
//   - WriteCredentials: lay out client.json / user.json in a credentials directory
//   - WriteTestCACert / WriteTestCertAndKey: generate temporary CA and leaf certificates for tests
package testutil
