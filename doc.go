// Package authkit is an embeddable authentication engine built on Redis.
//
// It covers the full account lifecycle: signup with email verification,
// login with a dual access/refresh token pair, refresh token rotation,
// multi-device session tracking with per-device and all-device logout,
// password change, and hashed time-limited password reset tokens.
//
// Construct an Engine with the Builder:
//
//	engine, err := authkit.New().
//		WithConfig(cfg).
//		WithRedis(client).
//		Build()
//
// All engine operations take a context.Context; attach the caller's IP and
// User-Agent with WithClientIP and WithUserAgent so sessions and audit
// events carry device metadata.
package authkit
