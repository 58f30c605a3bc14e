package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/ticketing-system/internal/core/domain"
)

const projectsCollection = "projects"

// ProjectRepository implements ports.ProjectDirectory using MongoDB.
type ProjectRepository struct {
	coll *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{coll: db.Collection(projectsCollection)}
}

type mongoProject struct {
	ID                string `bson:"_id,omitempty"`
	Code              string `bson:"code"`
	Name              string `bson:"name"`
	Status            string `bson:"status"`
	AssignedManagerID int64  `bson:"assigned_manager_id"`
}

func (mp mongoProject) toDomain() *domain.Project {
	return &domain.Project{
		ID:                mp.ID,
		Code:              mp.Code,
		Name:              mp.Name,
		Status:            domain.WorkStatus(mp.Status),
		AssignedManagerID: mp.AssignedManagerID,
	}
}

// ListUnfinishedByManager returns the manager's projects that are not Completed.
func (r *ProjectRepository) ListUnfinishedByManager(ctx context.Context, managerID int64) ([]*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"assigned_manager_id": managerID,
		"status":              bson.M{"$ne": string(domain.StatusCompleted)},
	}

	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find unfinished projects: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoProject
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}

	projects := make([]*domain.Project, 0, len(docs))
	for _, d := range docs {
		projects = append(projects, d.toDomain())
	}
	return projects, nil
}

// EnsureIndexes creates necessary indexes on the projects collection.
func (r *ProjectRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_manager_id", Value: 1}, {Key: "status", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
