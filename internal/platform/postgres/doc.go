// Package postgres contains the PostgreSQL implementations of the store
// interfaces: the insight cache, the background job queue, and the debt
// store. All implementations work through store.DBTX so they can run
// against either a connection pool or a caller-managed transaction.
package postgres
