// Package validators provides the string-format rules the built-in value
// types delegate to. The core never implements these rules itself; it calls
// them through the Validators interface so callers can swap the backing
// library.
package validators

import (
	"encoding/json"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validators is the capability consumed by the built-in catalog. Every method
// is a pure predicate over the string form of a value.
type Validators interface {
	IsEmail(s string) bool
	IsURL(s string) bool
	IsFQDN(s string) bool
	IsAlpha(s string) bool
	IsAlphanumeric(s string) bool
	IsASCII(s string) bool
	IsBase64(s string) bool
	IsBoolean(s string) bool
	IsInt(s string) bool
	IsFloat(s string) bool
	IsJSON(s string) bool
	IsMongoID(s string) bool
	IsEmpty(s string) bool
}

// Tags used against go-playground/validator for the rules it covers.
const (
	TagEmail        = "email"
	TagURL          = "url"
	TagFQDN         = "fqdn"
	TagAlpha        = "alpha"
	TagAlphanumeric = "alphanum"
	TagASCII        = "ascii"
	TagBase64       = "base64"
	TagJSON         = "json"
	TagMongoID      = "mongodb"
)

var (
	intPattern   = regexp.MustCompile(`^(?:[-+]?(?:0|[1-9][0-9]*))$`)
	floatPattern = regexp.MustCompile(`^(?:[-+])?(?:[0-9]+)?(?:\.[0-9]*)?(?:[eE][\+\-]?(?:[0-9]+))?$`)
)

// Playground implements Validators on top of go-playground/validator. Integer,
// float and boolean rules follow the strict query-string grammar ("-1.0" is
// not an integer, only "true"/"false"/"1"/"0" are booleans) which the
// validator tags do not express.
type Playground struct {
	validate *validator.Validate
}

// Ensure Playground satisfies the capability.
var _ Validators = (*Playground)(nil)

// New constructs a Playground backed by a fresh validator instance.
func New() *Playground {
	return &Playground{validate: validator.New()}
}

// NewWithValidate wraps an existing validator instance, letting callers share
// custom tag registrations.
func NewWithValidate(validate *validator.Validate) *Playground {
	if validate == nil {
		validate = validator.New()
	}
	return &Playground{validate: validate}
}

var (
	defaultOnce sync.Once
	defaultSet  *Playground
)

// Default returns a process-wide Playground instance.
func Default() *Playground {
	defaultOnce.Do(func() {
		defaultSet = New()
	})
	return defaultSet
}

func (p *Playground) is(s, tag string) bool {
	if s == "" {
		return false
	}
	return p.validate.Var(s, tag) == nil
}

// IsEmail reports whether s is an email address.
func (p *Playground) IsEmail(s string) bool { return p.is(s, TagEmail) }

// IsURL reports whether s is an absolute URL.
func (p *Playground) IsURL(s string) bool { return p.is(s, TagURL) }

// IsFQDN reports whether s is a fully qualified domain name.
func (p *Playground) IsFQDN(s string) bool { return p.is(s, TagFQDN) }

// IsAlpha reports whether s only contains ASCII letters.
func (p *Playground) IsAlpha(s string) bool { return p.is(s, TagAlpha) }

// IsAlphanumeric reports whether s only contains ASCII letters and digits.
func (p *Playground) IsAlphanumeric(s string) bool { return p.is(s, TagAlphanumeric) }

// IsASCII reports whether s only contains ASCII characters.
func (p *Playground) IsASCII(s string) bool { return p.is(s, TagASCII) }

// IsBase64 reports whether s is standard base64.
func (p *Playground) IsBase64(s string) bool { return p.is(s, TagBase64) }

// IsMongoID reports whether s is a 24 character hex object id.
func (p *Playground) IsMongoID(s string) bool { return p.is(s, TagMongoID) }

// IsJSON reports whether s decodes to a JSON object or array. Bare primitives
// such as "1" or "null" are rejected.
func (p *Playground) IsJSON(s string) bool {
	if !p.is(s, TagJSON) {
		return false
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	switch trimmed[0] {
	case '{', '[':
		return json.Valid([]byte(trimmed))
	default:
		return false
	}
}

// IsBoolean accepts the four canonical query-string spellings.
func (p *Playground) IsBoolean(s string) bool {
	switch s {
	case "true", "false", "1", "0":
		return true
	default:
		return false
	}
}

// IsInt reports whether s is a base-10 integer without leading zeros.
func (p *Playground) IsInt(s string) bool {
	return intPattern.MatchString(s)
}

// IsFloat reports whether s is a decimal number, optionally with exponent.
func (p *Playground) IsFloat(s string) bool {
	switch s {
	case "", ".", "-", "+":
		return false
	}
	return floatPattern.MatchString(s)
}

// IsEmpty reports whether s has zero length.
func (p *Playground) IsEmpty(s string) bool {
	return len(s) == 0
}
