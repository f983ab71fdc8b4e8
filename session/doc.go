// Package session pairs the JWT codec with the account store to issue,
// rotate, and authenticate token pairs. A session is a refresh token
// recorded on the account document; the raw token string is the handle
// used to revoke it.
package session
