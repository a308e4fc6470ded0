package credentials

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophdesk/internal/common"
	"github.com/go-playground/validator/v10"
)

// input is the validated shape of credentials supplied by a user.
type input struct {
	Username string `validate:"required,max=64,username"`
	Password string `validate:"required,max=256"`
	PIN      string `validate:"required,number,min=4,max=12"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("username", validUsername); err != nil {
		panic(fmt.Errorf("register username validation: %w", err))
	}
	return v
}

// validUsername accepts printable UTF-8 without whitespace or the key
// separator. Usernames become part of storage keys: a separator inside one
// would let two users' namespaces overlap.
func validUsername(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if !utf8.ValidString(name) || strings.Contains(name, common.KeySeparator) {
		return false
	}
	return strings.IndexFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}) < 0
}

func (s *Store) validate(in input) error {
	if err := s.validator.Struct(in); err != nil {
		return fmt.Errorf("%w: %s", common.ErrInvalidInput, describe(err))
	}
	return nil
}

// describe turns validator errors into a message that names fields but never
// echoes their values.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s fails %q", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
