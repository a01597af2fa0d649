// Package storage hosts the calendar's relational data in PostgreSQL and
// exposes it through the table-scoped rowstore.Store contract.
//
// Queries are assembled with squirrel from whitelisted table and column
// names only; every value travels as a bound parameter.
package storage
