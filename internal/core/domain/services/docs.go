// Package services provides domain services that work across the order
// ledger, its runs and the vehicle fleet.
//
// The package includes:
//   - ComputeBatches: partitions an order's rows into vehicle-sized batches
//   - RunAssigner: picks a vehicle for a batch and records the run that carries it
//
// Batches are never stored. They are derived from the ledger whenever they are
// needed, so a batch's status always matches the rows it covers.
package services
