package production

import "errors"

var (
	// ErrFactoryNotFound is returned when no factory is registered under an id
	ErrFactoryNotFound = errors.New("factory not found")

	// ErrDuplicateFactoryID is returned when a different factory claims a taken id
	ErrDuplicateFactoryID = errors.New("factory id already registered")
)
