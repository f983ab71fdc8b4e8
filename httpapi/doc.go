// Package httpapi exposes the engine's flows over HTTP. Every response is
// a JSON envelope: {success, message, data} on success, {success, message,
// errors} on failure, where errors is a list of {field, message} pairs for
// validation problems.
package httpapi
