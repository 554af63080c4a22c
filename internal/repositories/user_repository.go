package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/0xZumii/bleepblorp/internal/models"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrScreenNameTaken = errors.New("screen name already in use")
)

// UserRepository abstracts user identity and presence persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, id string, screenName string) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByScreenName(ctx context.Context, screenName string) (models.User, error)
	SetOnline(ctx context.Context, id string, online bool) error
	ListOnline(ctx context.Context) ([]models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// CreateUser records a new anonymous identity under the chosen screen name.
// A screen name held by a currently online user is rejected; names left
// behind by offline users may be reused.
func (r *UserRepo) CreateUser(ctx context.Context, id string, screenName string) (models.User, error) {
	var taken bool
	if err := r.db.GetContext(ctx, &taken,
		`SELECT EXISTS(SELECT 1 FROM users WHERE screen_name=$1 AND online=TRUE)`, screenName); err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, ErrScreenNameTaken
	}

	var user models.User
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users (id, screen_name, online) VALUES ($1, $2, TRUE)
         RETURNING id, screen_name, online, last_seen, created_at`, id, screenName).
		StructScan(&user)
	return user, err
}

// GetUser fetches a user by id.
func (r *UserRepo) GetUser(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT id, screen_name, online, last_seen, created_at FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetUserByScreenName resolves a screen name to its identity, preferring
// the online holder when the name has been reused across sessions.
func (r *UserRepo) GetUserByScreenName(ctx context.Context, screenName string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT id, screen_name, online, last_seen, created_at FROM users
         WHERE screen_name=$1 ORDER BY online DESC, last_seen DESC LIMIT 1`, screenName)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// SetOnline flips the presence flag and stamps last_seen.
func (r *UserRepo) SetOnline(ctx context.Context, id string, online bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET online=$2, last_seen=NOW() WHERE id=$1`, id, online)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListOnline returns all users currently marked online.
func (r *UserRepo) ListOnline(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users,
		`SELECT id, screen_name, online, last_seen, created_at FROM users
         WHERE online=TRUE ORDER BY screen_name ASC`)
	return users, err
}
