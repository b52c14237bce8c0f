// Package models defines the record model shared by the ledger engine,
// the storage layer and the RPC services.
//
// # Records
//
// The ledger is computed from two kinds of records:
//   - Expense: a payment by one user, split into per-user shares (Split)
//   - Settlement: money that already moved from one user to another
//
// An Expense or Settlement without a GroupID is a direct (two-party) record.
//
// # Identity
//
// Users and groups are referenced by opaque string IDs (UUID format). The
// ledger engine only ever needs the ID; display fields are used to enrich
// responses.
//
// # Money
//
// Amounts are decimal.Decimal values in a single, implicit currency. Sums are
// compared against expected totals with Tolerance (one cent).
package models
