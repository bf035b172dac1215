package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// AccountID represents a unique identifier for an application account
type AccountID string

// NewAccountID generates a new random AccountID
func NewAccountID() AccountID {
	return AccountID(uuid.NewString())
}

// Validate checks if the AccountID is valid
func (id AccountID) Validate() error {
	if id == "" {
		return goerr.New("account ID cannot be empty")
	}
	return nil
}

// String returns the string representation of AccountID
func (id AccountID) String() string {
	return string(id)
}

// CompanyID represents the identifier of the company an account belongs to
type CompanyID string

// String returns the string representation of CompanyID
func (id CompanyID) String() string {
	return string(id)
}

// TaskID represents a unique identifier for a field service task
type TaskID string

// NewTaskID generates a new random TaskID
func NewTaskID() TaskID {
	return TaskID(uuid.NewString())
}

// Validate checks if the TaskID is valid
func (id TaskID) Validate() error {
	if id == "" {
		return goerr.New("task ID cannot be empty")
	}
	return nil
}

// String returns the string representation of TaskID
func (id TaskID) String() string {
	return string(id)
}
