package user

import (
	"context"
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/gradebook/core"
)

var (
	// errors
	ErrNotFound                 = errors.New("user not found")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrUsernameExists     error = &core.DuplicateError{Entity: "user", Field: "username"}

	// compared against when the username is unknown so both failure paths cost a bcrypt round
	dummyHash     []byte
	dummyHashOnce sync.Once
)

type (
	Repository interface {
		// CreateUser stores the User and its credential together.
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		QueryUsersByRole(ctx context.Context, role Role) ([]User, error)
	}

	Service struct {
		repo       Repository
		validate   *validator.Validate
		translator ut.Translator
	}
)

func NewService(repo Repository, validate *validator.Validate, translator ut.Translator) *Service {
	RegisterValidators(validate, translator)
	return &Service{
		repo:       repo,
		validate:   validate,
		translator: translator,
	}
}

func (svc *Service) checkUniqueness(ctx context.Context, uname string) error {
	_, err := svc.repo.GetUserByUsername(ctx, uname)
	switch errors.Cause(err) {
	case nil:
		return usernameExistsError()
	case ErrNotFound:
		return nil
	default:
		return errors.Wrap(err, "checking username uniqueness")
	}
}

func usernameExistsError() error {
	return core.NewValidationError(ErrUsernameExists, core.FieldError{Field: "username", Error: ErrUsernameExists.Error()})
}

// Register creates a User and its credential. The role must be one of AllRoles.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(svc.validate); err != nil {
		return User{}, core.TranslateErrors(err, svc.translator)
	}
	if err := svc.checkUniqueness(ctx, nu.Username); err != nil {
		return User{}, err
	}

	usr := User{
		Username: nu.Username,
		Role:     Role(nu.Role),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		// lost a race against another registration
		if errors.Cause(err) == ErrUsernameExists {
			return User{}, usernameExistsError()
		}
		return User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

// Authenticate verifies the credentials. Unknown usernames & wrong passwords both yield ErrInvalidCredentials.
func (svc *Service) Authenticate(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			_ = bcrypt.CompareHashAndPassword(getDummyHash(), []byte(pwd))
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by username")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

// QueryStudents returns all students ordered by username.
func (svc *Service) QueryStudents(ctx context.Context) ([]User, error) {
	return svc.repo.QueryUsersByRole(ctx, RoleStudent)
}

func getDummyHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("gradebook.dummy"), HashCost)
	})
	return dummyHash
}
