// Package kernel provides the value objects shared by every aggregate of the
// batch plant domain.
//
// The package includes:
//   - UUID: identifier for orders, runs, vehicles, recipes and clients
//   - Volume: an amount of concrete in whole litres, printed as m³
//   - Material and Measurement: dosed material quantities in kilograms
//
// Values are immutable (Measurement helpers always return copies) and safe to
// share between goroutines.
package kernel
