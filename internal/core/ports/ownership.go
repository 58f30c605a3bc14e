package ports

import (
	"context"

	"github.com/99minutos/ticketing-system/internal/core/domain"
)

// ProjectDirectory answers whether a Manager still owns open projects.
type ProjectDirectory interface {
	// ListUnfinishedByManager returns projects assigned to managerID whose
	// status is not Completed.
	ListUnfinishedByManager(ctx context.Context, managerID int64) ([]*domain.Project, error)
}

// TaskDirectory answers whether an Employee still owns open tasks.
type TaskDirectory interface {
	// ListUnfinishedByEmployee returns tasks assigned to employeeID whose
	// status is not Completed.
	ListUnfinishedByEmployee(ctx context.Context, employeeID int64) ([]*domain.Task, error)
}
