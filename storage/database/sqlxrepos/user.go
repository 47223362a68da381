package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/user"
	"github.com/trezcool/gradebook/storage/database"
)

const selectUser = `
	SELECT u.id, u.username, u.role, c.password_hash
	FROM users u
	JOIN credentials c ON c.user_id = u.id`

type userRepository struct {
	db core.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db core.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo *userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.GetContext(ctx, &usr.ID, `INSERT INTO users (username, role) VALUES ($1, $2) RETURNING id`, usr.Username, usr.Role)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO credentials (user_id, password_hash) VALUES ($1, $2)`, usr.ID, usr.PasswordHash); err != nil {
		return user.User{}, errors.Wrap(err, "inserting credential")
	}

	if err = tx.Commit(); err != nil {
		return user.User{}, errors.Wrap(err, "committing user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, selectUser+` WHERE u.id = $1`, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by ID")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, selectUser+` WHERE u.username = $1`, username); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by username")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsersByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	users := make([]user.User, 0)
	if err := repo.db.SelectContext(ctx, &users, selectUser+` WHERE u.role = $1 ORDER BY u.username`, role); err != nil {
		return nil, errors.Wrap(err, "querying users by role")
	}
	return users, nil
}
