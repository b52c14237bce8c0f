// Package ledger turns expense and settlement records into balances.
//
// It has three parts:
//
//   - Build and (*Ledger).Net: a directed debt matrix between a fixed set of
//     participants, netted pair by pair.
//   - Aggregate and Positions: a single fold giving a viewer's owed/owing
//     totals, overall or per counterpart.
//   - DirectBalance, DirectLedger, GroupLedger and OutstandingDebts: the scopes
//     the application asks about (two users, a group, everyone).
//
// Everything here is a pure function of the records passed in. Nothing is
// cached between calls and no I/O is performed.
//
// # Netting is pairwise only
//
// Net reduces the two opposing edges between each pair of participants to a
// single edge. It does not cancel longer cycles: if A owes B 10, B owes C 15
// and C owes A 5, all three debts are reported as they are. Reducing cycles
// would change who pays whom between users who never transacted directly.
//
// # Malformed records
//
// Records that break an invariant (shares not adding up to the total within
// models.Tolerance, non-positive amounts, a settlement to oneself, a missing
// payer) are skipped and reported as a Warning. Contributions naming a user
// outside a declared scope are skipped the same way. Warnings never fail a
// computation.
package ledger
