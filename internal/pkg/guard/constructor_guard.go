// Package guard holds small helpers shared by the domain model.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the caller passes a nil error.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard lets a value tell whether it was produced by its constructor
// or is a zero value. Embed it in value objects and aggregates and check it from
// their Validate method.
//
// Example:
//
//	var ErrRecipeNotConstructed = errors.New("Recipe must be created via NewRecipe")
//
//	type Recipe struct {
//	    name  string
//	    guard guard.ConstructorGuard
//	}
//
//	func (r Recipe) Validate() error {
//	    return r.guard.Validate(ErrRecipeNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
