// Package account holds the account document model and its Redis-backed
// store. An account owns its credential hash, verification and reset token
// material, and the list of active sessions; the store persists the whole
// document as JSON under a key prefix and maintains secondary index keys
// for email and token-digest lookups.
package account
