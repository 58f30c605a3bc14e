package mongo

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/99minutos/ticketing-system/internal/core/domain"
)

func userDoc(id int64, username string, deleted bool) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "username", Value: username},
		{Key: "first_name", Value: "Alex"},
		{Key: "last_name", Value: "Stone"},
		{Key: "password_hash", Value: "$2a$10$hash"},
		{Key: "enabled", Value: true},
		{Key: "is_deleted", Value: deleted},
		{Key: "role", Value: "manager"},
		{Key: "gender", Value: "Male"},
		{Key: "created_at", Value: int64(1700000000)},
		{Key: "updated_at", Value: int64(1700000000)},
	}
}

func TestUserRepository_FindActiveByUsername(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ticketing.users", mtest.FirstBatch, userDoc(2, "alex", false)))

		u, err := repo.FindActiveByUsername(context.Background(), "alex")
		if err != nil {
			t.Fatalf("FindActiveByUsername: %v", err)
		}
		if u.ID != 2 || u.Username != "alex" || u.IsDeleted {
			t.Fatalf("unexpected user: %+v", u)
		}
		if u.Role.Kind != domain.RoleManager || u.Role.Description != "Manager" {
			t.Fatalf("expected role parsed to Manager, got %+v", u.Role)
		}
		if u.CreatedAt.IsZero() {
			t.Fatalf("expected created_at decoded")
		}
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ticketing.users", mtest.FirstBatch))

		if _, err := repo.FindActiveByUsername(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestUserRepository_Save_InsertAssignsSequenceID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: "users"},
				{Key: "seq", Value: int64(3)},
			}}),
			mtest.CreateSuccessResponse(),
		)

		saved, err := repo.Save(context.Background(), &domain.User{Username: "alex", Role: domain.ParseRole("Manager")})
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if saved.ID != 3 {
			t.Fatalf("expected id 3, got %d", saved.ID)
		}
	})

	mt.Run("duplicate active username", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: "users"},
				{Key: "seq", Value: int64(4)},
			}}),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}),
		)

		if _, err := repo.Save(context.Background(), &domain.User{Username: "alex"}); !errors.Is(err, domain.ErrUserExists) {
			t.Fatalf("expected ErrUserExists, got %v", err)
		}
	})
}

func TestUserRepository_Save_ReplaceKeepsID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("replace", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		u := &domain.User{ID: 2, Username: "alex"}
		u.MarkDeleted(u.UpdatedAt)
		saved, err := repo.Save(context.Background(), u)
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if saved.ID != 2 || saved.Username != "alex-2" || !saved.IsDeleted {
			t.Fatalf("unexpected saved user: %+v", saved)
		}
	})

	mt.Run("missing row", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		if _, err := repo.Save(context.Background(), &domain.User{ID: 99, Username: "nobody"}); !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestUserRepository_ListActive(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes all", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ticketing.users", mtest.FirstBatch,
			userDoc(3, "zoe", false),
			userDoc(1, "anna", false),
		))

		users, err := repo.ListActive(context.Background())
		if err != nil {
			t.Fatalf("ListActive: %v", err)
		}
		if len(users) != 2 || users[0].Username != "zoe" || users[1].Username != "anna" {
			t.Fatalf("unexpected users: %+v", users)
		}
	})
}

func TestUserRepository_ListActiveByRole(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("case-insensitive collation on active rows", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ticketing.users", mtest.FirstBatch,
			userDoc(2, "alex", false),
		))

		users, err := repo.ListActiveByRole(context.Background(), "MANAGER")
		if err != nil {
			t.Fatalf("ListActiveByRole: %v", err)
		}
		if len(users) != 1 || users[0].Role.Kind != domain.RoleManager {
			t.Fatalf("unexpected users: %+v", users)
		}

		cmd := mt.GetStartedEvent().Command
		if role, _ := cmd.Lookup("filter", "role").StringValueOK(); role != "MANAGER" {
			t.Fatalf("expected role filter MANAGER, got %q", role)
		}
		if deleted, ok := cmd.Lookup("filter", "is_deleted").BooleanOK(); !ok || deleted {
			t.Fatalf("expected is_deleted=false filter, got %v", cmd.Lookup("filter"))
		}
		if locale, _ := cmd.Lookup("collation", "locale").StringValueOK(); locale != "en" {
			t.Fatalf("expected collation locale en, got %q", locale)
		}
		if strength, ok := cmd.Lookup("collation", "strength").AsInt64OK(); !ok || strength != 2 {
			t.Fatalf("expected collation strength 2, got %v", cmd.Lookup("collation"))
		}
	})
}

func TestUserRepository_ListDeleted(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("only deleted rows, newest first", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ticketing.users", mtest.FirstBatch,
			userDoc(2, "alex-2", true),
		))

		users, err := repo.ListDeleted(context.Background())
		if err != nil {
			t.Fatalf("ListDeleted: %v", err)
		}
		if len(users) != 1 || users[0].Username != "alex-2" || !users[0].IsDeleted {
			t.Fatalf("unexpected users: %+v", users)
		}

		cmd := mt.GetStartedEvent().Command
		if deleted, ok := cmd.Lookup("filter", "is_deleted").BooleanOK(); !ok || !deleted {
			t.Fatalf("expected is_deleted=true filter, got %v", cmd.Lookup("filter"))
		}
		if dir, ok := cmd.Lookup("sort", "updated_at").AsInt64OK(); !ok || dir != -1 {
			t.Fatalf("expected updated_at descending sort, got %v", cmd.Lookup("sort"))
		}
	})
}
