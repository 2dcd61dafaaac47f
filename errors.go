package crate

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/xraph/go-utils/errs"
)

// =============================================================================
// ERROR CODES
// =============================================================================

const (
	// CodeServiceNotRegistered indicates the requested type has neither an exact
	// nor an open-generic registration
	CodeServiceNotRegistered = "SERVICE_NOT_REGISTERED"

	// CodeMalformedOpenGeneric indicates a matched open-generic registration
	// has no implementation template to specialize
	CodeMalformedOpenGeneric = "MALFORMED_OPEN_GENERIC"

	// CodeNoConstructor indicates the implementation type cannot be constructed
	CodeNoConstructor = "NO_CONSTRUCTOR"

	// CodeNullInstance indicates a nil instance was registered
	CodeNullInstance = "NULL_INSTANCE"

	// CodeIncompatibleImplementation indicates the implementation is not
	// assignable to the service type
	CodeIncompatibleImplementation = "INCOMPATIBLE_IMPLEMENTATION"

	// CodeUnknownInstantiation indicates an open template was matched but the
	// closed implementation it specializes to was never declared
	CodeUnknownInstantiation = "UNKNOWN_INSTANTIATION"

	// CodeInvalidConstructor indicates Declare was given something that is not
	// a usable constructor
	CodeInvalidConstructor = "INVALID_CONSTRUCTOR"

	// CodeTypeMismatch indicates a resolved value does not fit the requested type
	CodeTypeMismatch = "TYPE_MISMATCH"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

// ErrServiceNotRegisteredSentinel is a sentinel for missing registrations (for error checking).
var ErrServiceNotRegisteredSentinel = errs.NewError(CodeServiceNotRegistered, "service not registered", nil)

// ErrMalformedOpenGenericSentinel is a sentinel for broken open-generic registrations.
var ErrMalformedOpenGenericSentinel = errs.NewError(CodeMalformedOpenGeneric, "malformed open generic registration", nil)

// ErrNoConstructorSentinel is a sentinel for types without a constructor.
var ErrNoConstructorSentinel = errs.NewError(CodeNoConstructor, "no constructor available", nil)

// ErrNullInstanceSentinel is a sentinel for nil instance registrations.
var ErrNullInstanceSentinel = errs.NewError(CodeNullInstance, "instance cannot be nil", nil)

// ErrIncompatibleImplementationSentinel is a sentinel for implementations that do not satisfy their service.
var ErrIncompatibleImplementationSentinel = errs.NewError(CodeIncompatibleImplementation, "incompatible implementation", nil)

// ErrUnknownInstantiationSentinel is a sentinel for specializations missing from the catalog.
var ErrUnknownInstantiationSentinel = errs.NewError(CodeUnknownInstantiation, "unknown generic instantiation", nil)

// ErrInvalidConstructorSentinel is a sentinel for rejected constructors.
var ErrInvalidConstructorSentinel = errs.NewError(CodeInvalidConstructor, "invalid constructor", nil)

// ErrTypeMismatchSentinel is a sentinel for type mismatches during resolution.
var ErrTypeMismatchSentinel = errs.NewError(CodeTypeMismatch, "type mismatch", nil)

// =============================================================================
// ERROR CONSTRUCTORS
// =============================================================================

// ErrServiceNotRegistered creates an error for a type with no registration
func ErrServiceNotRegistered(service Type) *errs.Error {
	return errs.NewError(
		CodeServiceNotRegistered,
		fmt.Sprintf("service %s is not registered", service),
		nil,
	).WithContext("service", service.String()).(*errs.Error)
}

// ErrMalformedOpenGeneric creates an error for an open registration that cannot be specialized
func ErrMalformedOpenGeneric(template Type, implementation Type) *errs.Error {
	return errs.NewError(
		CodeMalformedOpenGeneric,
		fmt.Sprintf("open generic registration %s has no implementation template (got %s)", template, implementation),
		nil,
	).WithContext("service", template.String()).
		WithContext("implementation", implementation.String()).(*errs.Error)
}

// ErrNoConstructor creates an error for an implementation type without a constructor
func ErrNoConstructor(implementation Type) *errs.Error {
	return errs.NewError(
		CodeNoConstructor,
		fmt.Sprintf("no public constructor found for %s", implementation),
		nil,
	).WithContext("implementation", implementation.String()).(*errs.Error)
}

// ErrNullInstance creates an error for a nil instance registration
func ErrNullInstance(service Type) *errs.Error {
	return errs.NewError(
		CodeNullInstance,
		fmt.Sprintf("instance registered for %s cannot be nil", service),
		nil,
	).WithContext("service", service.String()).(*errs.Error)
}

// ErrIncompatibleImplementation creates an error for an implementation not assignable to its service
func ErrIncompatibleImplementation(service, implementation Type) *errs.Error {
	return errs.NewError(
		CodeIncompatibleImplementation,
		fmt.Sprintf("%s does not implement %s", implementation, service),
		nil,
	).WithContext("service", service.String()).
		WithContext("implementation", implementation.String()).(*errs.Error)
}

// ErrUnknownInstantiation creates an error for a specialization the catalog has never seen
func ErrUnknownInstantiation(template Type, args string) *errs.Error {
	return errs.NewError(
		CodeUnknownInstantiation,
		fmt.Sprintf("%s was never declared", template.instantiate(args)),
		nil,
	).WithContext("template", template.String()).
		WithContext("type_args", args).(*errs.Error)
}

// ErrInvalidConstructor creates an error for a rejected constructor
func ErrInvalidConstructor(constructor any, cause error) *errs.Error {
	return errs.NewError(
		CodeInvalidConstructor,
		fmt.Sprintf("invalid constructor %T", constructor),
		cause,
	).WithContext("constructor", fmt.Sprintf("%T", constructor)).(*errs.Error)
}

// ErrTypeMismatch creates an error for a value that does not fit the requested type
func ErrTypeMismatch(expected Type, actual any) *errs.Error {
	return errs.NewError(
		CodeTypeMismatch,
		fmt.Sprintf("expected %s, got %T", expected, actual),
		nil,
	).WithContext("service", expected.String()).
		WithContext("actual_type", fmt.Sprintf("%T", actual)).(*errs.Error)
}

// wrapf is the shared annotation helper for internal failures.
func wrapf(err error, format string, args ...any) error {
	return errors.Wrapf(err, format, args...)
}
