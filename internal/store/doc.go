// Package store defines the persistence interfaces consumed by the service
// layer, the shared DBTX abstraction that lets store implementations run
// against either a connection pool or a transaction, and the sentinel errors
// implementations map database failures onto.
package store
