package reflection

import "errors"

var (
	// Registration errors

	ErrRegistrySealed    = errors.New("registry is sealed")
	ErrInvalidTypeID     = errors.New("invalid type id")
	ErrUnknownType       = errors.New("type is not registered")
	ErrMemberOutOfBounds = errors.New("member exceeds owner size")
	ErrMissingMembers    = errors.New("type flagged HasMembers has no members")
	ErrFlagMismatch      = errors.New("type has members but is not flagged HasMembers")
	ErrMissingInnerType  = errors.New("container type has no inner type")
	ErrMissingLayout     = errors.New("sequence container has no layout")
	ErrNotAStruct        = errors.New("type is not a struct")

	// Object errors

	ErrNilObject   = errors.New("object pointer is nil")
	ErrNotAPointer = errors.New("value is not a pointer")

	// ErrInvariantViolation marks a member address outside its owner. Only
	// raised by builds with the reflectdebug tag.
	ErrInvariantViolation = errors.New("member address outside owner")
)
