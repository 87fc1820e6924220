package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Factory definition errors

type FactoryDefinitionError struct {
	*DomainError
	FactoryID int
}

func NewFactoryDefinitionError(factoryID int, message string) *FactoryDefinitionError {
	return &FactoryDefinitionError{
		DomainError: &DomainError{Message: fmt.Sprintf("factory %d: %s", factoryID, message)},
		FactoryID:   factoryID,
	}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
