package catalog

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

// Kinds of catalog entries
const (
	KindClass   = "class"
	KindSubject = "subject"
)

type Class struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

type Subject struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

// NewEntry contains information needed to create a Class or a Subject, chosen by Kind.
type NewEntry struct {
	Kind string `form:"type" validate:"required,oneof=class subject"`
	Name string `form:"name" validate:"required,max=64"`
}

func (ne *NewEntry) Validate(validate *validator.Validate) error {
	ne.Kind = core.CleanString(ne.Kind, true /* lower */)
	ne.Name = core.CleanString(ne.Name)
	return validate.Struct(ne)
}
