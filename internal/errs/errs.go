// Package errs defines the error shape every HTTP response uses.
//
// Handlers, services and repositories return these errors; the global
// error handler in package middleware turns them into responses.
package errs
