// Package middleware exposes HTTP middleware adapters built on top of
// authkit.Engine access-token verification.
//
// # Guards
//
//   - [Guard] verifies the bearer access token and injects the caller
//     identity into the request context.
//   - [RequireRoles] layers a role check on top of Guard's identity.
//
// Each guard reads the Authorization header, calls Engine.AuthenticateAccess,
// and injects the resolved AccountSummary into the request context. The
// caller's IP and User-Agent are attached to the context so downstream
// engine calls record device metadata.
//
// This package translates HTTP semantics into Engine calls. It does not
// parse JWTs or touch Redis itself.
package middleware
