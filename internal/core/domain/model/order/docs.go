// Package order models a production order of the batch plant.
//
// The package includes:
//   - Order: the aggregate root holding the row ledger and the order state machine
//   - Row: one unit-volume work item (1 m³, the last row may be smaller)
//   - Status and RowState: the order and row lifecycles
//   - Summary: produced volume and set/actual/delta material totals
//
// Key business rules:
//   - orders are placed as Draft and start producing once resumed
//   - only a Running order may begin a row, and at most one row runs at a time
//   - a row is done once its measured materials are recorded
//   - a Running order completes to Done when its last row is done
//   - failed operations leave the order untouched
package order
