package pgenum

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/go-openapi/inflect"
)

var (
	// ErrUnknownLabel is returned when a label read from the database has no
	// matching member.
	ErrUnknownLabel = errors.New("pgenum: unknown enum label")
	// ErrUnknownValue is returned when a value sent to the database is not a
	// registered member.
	ErrUnknownValue = errors.New("pgenum: unknown enum value")
)

// Enum is the set of types the generator accepts as enums.
type Enum interface {
	~string |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// NameTranslator maps Go names to PostgreSQL names.
type NameTranslator interface {
	// TranslateTypeName returns the PostgreSQL type name for a Go type name.
	TranslateTypeName(name string) string
	// TranslateMemberName returns the PostgreSQL label for a member name.
	TranslateMemberName(name string) string
}

// SnakeCaseTranslator converts names to snake case: DaysOfWeek becomes
// days_of_week. It is the default translator.
type SnakeCaseTranslator struct{}

func (SnakeCaseTranslator) TranslateTypeName(name string) string   { return inflect.Underscore(name) }
func (SnakeCaseTranslator) TranslateMemberName(name string) string { return inflect.Underscore(name) }

// NullNameTranslator leaves names untouched.
type NullNameTranslator struct{}

func (NullNameTranslator) TranslateTypeName(name string) string   { return name }
func (NullNameTranslator) TranslateMemberName(name string) string { return name }

// DefaultNameTranslator is used by builders that were not given a translator.
var DefaultNameTranslator NameTranslator = SnakeCaseTranslator{}

// Option configures a single MapEnum or HasPostgresEnum call.
type Option func(*options)

type options struct {
	name       string
	translator NameTranslator
}

// WithName sets the PostgreSQL type name explicitly.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithTranslator overrides the builder's name translator for one enum.
func WithTranslator(t NameTranslator) Option {
	return func(o *options) {
		o.translator = t
	}
}

func buildOptions(translator NameTranslator, opts []Option) options {
	o := options{translator: translator}
	for _, opt := range opts {
		opt(&o)
	}

	if o.translator == nil {
		o.translator = DefaultNameTranslator
	}

	return o
}

// Mapping binds a Go enum type to a PostgreSQL enum type.
type Mapping struct {
	// GoType is the mapped Go type.
	GoType reflect.Type
	// PGName is the PostgreSQL type name.
	PGName string
	// Labels holds the PostgreSQL labels in member order.
	Labels []string

	byValue map[any]string
	byLabel map[string]any
}

func newMapping[E Enum](members []E, o options) *Mapping {
	t := reflect.TypeFor[E]()

	m := &Mapping{
		GoType:  t,
		PGName:  o.name,
		Labels:  make([]string, 0, len(members)),
		byValue: make(map[any]string, len(members)),
		byLabel: make(map[string]any, len(members)),
	}
	if m.PGName == "" {
		m.PGName = o.translator.TranslateTypeName(t.Name())
	}

	for _, v := range members {
		// Aliased constants share a value; the first name wins.
		if _, dup := m.byValue[v]; dup {
			continue
		}

		label := memberLabel(v, o.translator)
		m.byValue[v] = label
		m.byLabel[label] = v
		m.Labels = append(m.Labels, label)
	}

	return m
}

// Label returns the PostgreSQL label of v.
func (m *Mapping) Label(v any) (string, error) {
	label, ok := m.byValue[v]
	if !ok {
		return "", fmt.Errorf("%w: %v for %s", ErrUnknownValue, v, m.PGName)
	}

	return label, nil
}

// Parse converts a PostgreSQL label back to its Go value.
func Parse[E Enum](m *Mapping, label string) (E, error) {
	var zero E

	v, ok := m.byLabel[label]
	if !ok {
		return zero, fmt.Errorf("%w: %q for %s", ErrUnknownLabel, label, m.PGName)
	}

	e, ok := v.(E)
	if !ok {
		return zero, fmt.Errorf("pgenum: %s is mapped to %s, not %T", m.PGName, m.GoType, zero)
	}

	return e, nil
}

func memberLabel[E Enum](v E, translator NameTranslator) string {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String()
	}

	if s, ok := any(v).(fmt.Stringer); ok {
		return translator.TranslateMemberName(s.String())
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	default:
		return strconv.FormatUint(rv.Uint(), 10)
	}
}
