// Package models defines the wire-level domain models for splitmate.
//
// All types mirror the JSON shapes served by the expense API:
//   - Expense: a single expense record; the backend serializes amounts
//     as decimal strings
//   - Group: a named set of member user IDs; exactly one group is
//     selected per client session
//   - User: the account object returned by registration
//
// Timestamps stay as the ISO strings the backend emits. The client never
// does arithmetic on them, and keeping them opaque makes the local cache
// a faithful copy of the server payload.
package models
