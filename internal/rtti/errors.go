package rtti

import "errors"

// Object and member errors.
var (
	// ErrNoConstructor is returned when no constructor matches a create request.
	ErrNoConstructor = errors.New("no matching constructor")

	// ErrNoMethod is returned when a method or slot does not exist.
	ErrNoMethod = errors.New("method not found")

	// ErrNoSignal is returned when a signal does not exist.
	ErrNoSignal = errors.New("signal not found")

	// ErrSignatureMismatch is returned when parameters do not fit a signature.
	ErrSignatureMismatch = errors.New("signature mismatch")

	// ErrUnknownAttribute is returned when an attribute is not declared by a class.
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrAttributeType is returned when a value does not fit an attribute's type.
	ErrAttributeType = errors.New("attribute type mismatch")

	// ErrNilObject is returned when an operation needs an object and got nil.
	ErrNilObject = errors.New("object is nil")

	// ErrNoClass is returned when an object created without a class is
	// asked for class members.
	ErrNoClass = errors.New("object has no class")

	// ErrInvalidSignature is returned when a signature string cannot be parsed.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrInvalidParams is returned when a parameter string cannot be parsed.
	ErrInvalidParams = errors.New("invalid parameter string")
)

// Loader errors.
var (
	// ErrNoEntryPoint is returned when a plugin binary lacks a required export.
	ErrNoEntryPoint = errors.New("plugin binary has no entry point")

	// ErrBinaryClosed is returned when a closed binary is used.
	ErrBinaryClosed = errors.New("plugin binary is closed")
)

// Registry errors.
var (
	// ErrBuildTypeMismatch is returned when a plugin was built for another
	// build type than the host.
	ErrBuildTypeMismatch = errors.New("build type mismatch")

	// ErrModuleIDInUse is returned when a plugin reports the id of another
	// loaded module.
	ErrModuleIDInUse = errors.New("module id already in use")

	// ErrReservedModuleID is returned when a plugin reports an id from the
	// range handed out to delayed modules.
	ErrReservedModuleID = errors.New("module id is reserved for delayed modules")

	// ErrInvalidBuildType is returned by ParseBuildType for unknown names.
	ErrInvalidBuildType = errors.New("invalid build type")
)
