// Package model holds the Flavor entity and the request payloads of the
// flavor routes.
package model
