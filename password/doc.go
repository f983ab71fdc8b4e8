// Package password provides the credential hashing primitives used by the
// authentication engine: a bcrypt hasher for the password credential and the
// password strength policy applied on signup, reset, and change flows.
//
// Hashing is deliberately slow (cost-factor tuned so verification takes tens
// of milliseconds). The plaintext never leaves this package's call frames;
// only the encoded hash is handed back for persistence.
package password
