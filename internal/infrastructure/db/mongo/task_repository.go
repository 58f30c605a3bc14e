package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/ticketing-system/internal/core/domain"
)

const tasksCollection = "tasks"

// TaskRepository implements ports.TaskDirectory using MongoDB.
type TaskRepository struct {
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{coll: db.Collection(tasksCollection)}
}

type mongoTask struct {
	ID                 string `bson:"_id,omitempty"`
	ProjectCode        string `bson:"project_code"`
	Subject            string `bson:"subject"`
	Status             string `bson:"status"`
	AssignedEmployeeID int64  `bson:"assigned_employee_id"`
}

func (d mongoTask) toDomain() *domain.Task {
	return &domain.Task{
		ID:                 d.ID,
		ProjectCode:        d.ProjectCode,
		Subject:            d.Subject,
		Status:             domain.WorkStatus(d.Status),
		AssignedEmployeeID: d.AssignedEmployeeID,
	}
}

// ListUnfinishedByEmployee returns the employee's tasks that are not Completed.
func (r *TaskRepository) ListUnfinishedByEmployee(ctx context.Context, employeeID int64) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"assigned_employee_id": employeeID,
		"status":               bson.M{"$ne": string(domain.StatusCompleted)},
	}

	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find unfinished tasks: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoTask
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toDomain())
	}
	return tasks, nil
}

// EnsureIndexes creates necessary indexes on the tasks collection.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "project_code", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_employee_id", Value: 1}, {Key: "status", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
