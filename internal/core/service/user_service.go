package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/ticketing-system/internal/core/domain"
	"github.com/99minutos/ticketing-system/internal/core/ports"
	"github.com/99minutos/ticketing-system/internal/pkg/metrics"
)

// UserService is the user lifecycle manager. It owns every mutation of a
// user record and the deletion-safety decision.
type UserService struct {
	repo      ports.UserRepository
	projects  ports.ProjectDirectory
	tasks     ports.TaskDirectory
	directory ports.IdentityDirectory
	mirrorLog ports.MirrorFailureLog // optional
	encoder   ports.PasswordEncoder
	log       zerolog.Logger
	now       func() time.Time
}

func NewUserService(
	repo ports.UserRepository,
	projects ports.ProjectDirectory,
	tasks ports.TaskDirectory,
	directory ports.IdentityDirectory,
	mirrorLog ports.MirrorFailureLog,
	encoder ports.PasswordEncoder,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		repo:      repo,
		projects:  projects,
		tasks:     tasks,
		directory: directory,
		mirrorLog: mirrorLog,
		encoder:   encoder,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateUser persists a new enabled user and then mirrors it into the
// Identity Directory. The mirror is best-effort: its failure never undoes the
// local write (see mirror).
func (s *UserService) CreateUser(ctx context.Context, in ports.UserInput) (*domain.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	hash, err := s.encoder.Encode(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: encode password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		Enabled:      true,
		IsDeleted:    false,
		Role:         domain.ParseRole(in.Role),
		Gender:       domain.Gender(in.Gender),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	metrics.UsersCreatedTotal.WithLabelValues(roleLabel(saved.Role)).Inc()

	s.mirror(ctx, saved, in.Password)

	s.log.Info().Int64("user_id", saved.ID).Str("username", saved.Username).Str("role", saved.Role.Description).Msg("user created")
	return saved, nil
}

// mirror creates the Identity Directory account for a user that is already
// persisted. Failures are logged, counted and recorded in the mirror ledger
// for reconciliation, and are not returned.
func (s *UserService) mirror(ctx context.Context, u *domain.User, password string) {
	err := s.directory.CreateAccount(ctx, ports.IdentityAccount{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Password:  password,
		Enabled:   u.Enabled,
		Role:      u.Role.Description,
	})
	if err == nil {
		if s.mirrorLog != nil {
			if rerr := s.mirrorLog.Resolve(ctx, u.Username); rerr != nil {
				s.log.Warn().Err(rerr).Str("username", u.Username).Msg("failed to resolve mirror ledger entry")
			}
		}
		return
	}

	metrics.IdentityMirrorFailuresTotal.Inc()
	s.log.Warn().Err(err).Int64("user_id", u.ID).Str("username", u.Username).Msg("identity directory mirror failed, keeping local user")

	if s.mirrorLog != nil {
		if lerr := s.mirrorLog.Record(ctx, u.Username, err); lerr != nil {
			s.log.Error().Err(lerr).Str("username", u.Username).Msg("failed to record identity mirror failure")
		}
	}
}

// UpdateUser overwrites the active user named in.Username. The password is
// re-encoded on every call and the stored ID is always kept, whatever ID the
// caller sent.
func (s *UserService) UpdateUser(ctx context.Context, in ports.UserInput) (*domain.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	hash, err := s.encoder.Encode(in.Password)
	if err != nil {
		return nil, fmt.Errorf("update user: encode password: %w", err)
	}

	existing, err := s.repo.FindActiveByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	user := &domain.User{
		ID:           existing.ID,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		Enabled:      in.Enabled,
		IsDeleted:    false,
		Role:         domain.ParseRole(in.Role),
		Gender:       domain.Gender(in.Gender),
		CreatedAt:    existing.CreatedAt,
		UpdatedAt:    s.now(),
	}

	updated, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	metrics.UsersUpdatedTotal.Inc()

	s.log.Info().Int64("user_id", updated.ID).Str("username", updated.Username).Msg("user updated")
	return updated, nil
}

// DeleteUser soft-deletes the active user named username.
//
// The user is looked up, then checked for unfinished work according to its
// role, and only when none is left marked deleted and renamed to
// "<username>-<id>". A user with open work is left untouched and
// domain.ErrUserNotDeletable is returned.
//
// Not handled here:
//   - nothing serialises the ownership check and the write, so work assigned
//     in between can end up owned by a deleted user;
//   - the Identity Directory account is not removed;
//   - deleting the last Admin is allowed.
func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	user, err := s.repo.FindActiveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.UserDeletionsTotal.WithLabelValues(metrics.DeletionNotFound).Inc()
		} else {
			metrics.UserDeletionsTotal.WithLabelValues(metrics.DeletionError).Inc()
		}
		return fmt.Errorf("delete user: %w", err)
	}

	open, err := s.openWork(user.Role.Kind)(ctx, user)
	if err != nil {
		metrics.UserDeletionsTotal.WithLabelValues(metrics.DeletionError).Inc()
		return fmt.Errorf("delete user: ownership check: %w", err)
	}
	if open > 0 {
		metrics.UserDeletionsTotal.WithLabelValues(metrics.DeletionRejected).Inc()
		s.log.Info().
			Int64("user_id", user.ID).
			Str("username", user.Username).
			Str("role", user.Role.Description).
			Int("open_items", open).
			Msg("user delete rejected")
		return domain.ErrUserNotDeletable
	}

	original := user.Username
	user.MarkDeleted(s.now())
	if _, err := s.repo.Save(ctx, user); err != nil {
		metrics.UserDeletionsTotal.WithLabelValues(metrics.DeletionError).Inc()
		return fmt.Errorf("delete user: %w", err)
	}
	metrics.UserDeletionsTotal.WithLabelValues(metrics.DeletionDeleted).Inc()

	s.log.Info().Int64("user_id", user.ID).Str("username", original).Str("stored_as", user.Username).Msg("user deleted")
	return nil
}

// workCheck counts the unfinished work items that block deleting u.
type workCheck func(ctx context.Context, u *domain.User) (int, error)

// openWork returns the ownership predicate for a role. Roles that cannot own
// work (Admin and unknown roles) are always clear.
func (s *UserService) openWork(kind domain.RoleKind) workCheck {
	switch kind {
	case domain.RoleManager:
		return func(ctx context.Context, u *domain.User) (int, error) {
			projects, err := s.projects.ListUnfinishedByManager(ctx, u.ID)
			return len(projects), err
		}
	case domain.RoleEmployee:
		return func(ctx context.Context, u *domain.User) (int, error) {
			tasks, err := s.tasks.ListUnfinishedByEmployee(ctx, u.ID)
			return len(tasks), err
		}
	default:
		return func(context.Context, *domain.User) (int, error) { return 0, nil }
	}
}

// ListUsers returns active users ordered by first name, descending.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.repo.FindActiveByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// ListByRole returns active users whose role description matches role,
// ignoring case.
func (s *UserService) ListByRole(ctx context.Context, role string) ([]*domain.User, error) {
	users, err := s.repo.ListActiveByRole(ctx, strings.TrimSpace(role))
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return users, nil
}

// ListDeletedUsers returns the soft-deleted users under their stored
// (renamed) usernames.
func (s *UserService) ListDeletedUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.ListDeleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("list deleted users: %w", err)
	}
	return users, nil
}

func (s *UserService) ListMirrorFailures(ctx context.Context) ([]domain.MirrorFailure, error) {
	if s.mirrorLog == nil {
		return []domain.MirrorFailure{}, nil
	}
	failures, err := s.mirrorLog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list mirror failures: %w", err)
	}
	return failures, nil
}

func validateInput(in ports.UserInput) error {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" || strings.TrimSpace(in.Role) == "" {
		return domain.ErrInvalidUser
	}
	return nil
}

// roleLabel keeps metric cardinality bounded for free-form role descriptions.
func roleLabel(r domain.Role) string {
	if r.Kind == domain.RoleOther {
		return "Other"
	}
	return r.Description
}
