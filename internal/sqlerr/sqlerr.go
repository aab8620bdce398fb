// Package sqlerr specifically handles database driver errors.
//
// It parses cryptic error codes from the database driver and
// converts them into errs.HTTPError values. Every store failure
// becomes a 500 whose code names the violation (e.g. FLAVOR_REQUIRED),
// and "no rows" becomes a plain-text 404 for the affected entity.
package sqlerr
