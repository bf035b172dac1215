package memory

import (
	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	account    *accountRepository
	task       *taskRepository
	deadLetter *deadLetterRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		account:    newAccountRepository(),
		task:       newTaskRepository(),
		deadLetter: newDeadLetterRepository(),
	}
}

func (m *Memory) Account() interfaces.AccountRepository {
	return m.account
}

func (m *Memory) Task() interfaces.TaskRepository {
	return m.task
}

func (m *Memory) DeadLetter() interfaces.DeadLetterRepository {
	return m.deadLetter
}

func (m *Memory) Close() error {
	return nil
}
