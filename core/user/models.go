package user

import (
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/gradebook/core"
)

type Role string

// Roles
const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

var (
	AllRoles   = []Role{RoleStudent, RoleTeacher, RoleAdmin}
	StaffRoles = []Role{RoleTeacher, RoleAdmin}

	RoleOptions = []RoleOption{
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Admin", Value: RoleAdmin},
	}

	HashCost = bcrypt.DefaultCost // mockable
)

type RoleOption struct {
	Name  string
	Value Role
}

func (r Role) Valid() bool {
	return r.In(AllRoles...)
}

func (r Role) In(roles ...Role) bool {
	for _, role := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

type User struct {
	ID           int    `db:"id"`
	Username     string `db:"username"`
	Role         Role   `db:"role"`
	PasswordHash []byte `db:"password_hash"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), HashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsStudent() bool { return u.Role == RoleStudent }

func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// Identity is the authenticated caller, resolved once per request from the session.
type Identity struct {
	UserID   int
	Username string
	Role     Role
}

func (id Identity) IsZero() bool { return id.UserID == 0 }

// NewUser contains information needed to register a new User.
type NewUser struct {
	Username string `form:"username" validate:"required,max=64,alphanum_"`
	Password string `form:"password" validate:"required,max=72"`
	Role     string `form:"role" validate:"required,role"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	return validate.Struct(nu)
}
