// Package limiter provides the counting admission gates that bound the
// number of concurrent logical database operations.
//
// This is not a connection pool: physical connection pooling is delegated to
// the database driver. The limiter only throttles how many statements are in
// flight at once, with separate gates for reads and writes.
package limiter
