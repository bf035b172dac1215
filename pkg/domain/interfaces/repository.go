package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Account() AccountRepository
	Task() TaskRepository
	DeadLetter() DeadLetterRepository

	// Close releases backend resources
	Close() error
}
