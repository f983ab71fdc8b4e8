// Package token implements the dual-key bearer token codec: short-lived
// access tokens carrying identity claims and long-lived refresh tokens
// carrying a unique token identifier.
//
// The two token kinds are signed with distinct secrets. A token valid under
// one key never validates under the other, so a leaked access secret cannot
// be used to forge refresh tokens. Verification additionally requires the
// embedded kind tag to match the kind the caller expects.
package token
