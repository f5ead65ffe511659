package valuetype

import (
	"errors"
	"fmt"
)

// ErrInvalidParams wraps every params validation failure.
var ErrInvalidParams = errors.New("valuetype: invalid params")

// Item is the realised behaviour of one registered type. Items are immutable
// and safe for concurrent use as long as the definition's functions are.
type Item struct {
	name string
	def  Definition
}

// NewItem builds a standalone item. Most callers obtain items from a Manager.
func NewItem(name string, def Definition) *Item {
	return &Item{name: name, def: def}
}

// Name returns the registered type name.
func (i *Item) Name() string {
	return i.name
}

// Info returns a copy of the definition backing the item.
func (i *Item) Info() Definition {
	return i.def
}

// Nullable reports whether nil is accepted as a valid value.
func (i *Item) Nullable() bool {
	return i.def.Nullable
}

func (i *Item) passesNull(input any) bool {
	return i.def.Nullable && input == nil
}

// Check validates input against params. A checker that fails while running
// (error or panic) yields a result carrying its message and no code.
func (i *Item) Check(input, params any) (result CheckResult) {
	if i.def.Checker.IsZero() {
		return CheckResult{OK: true, Message: MessageSuccess}
	}
	defer func() {
		if r := recover(); r != nil {
			result = CheckResult{OK: false, Message: panicMessage(r)}
		}
	}()

	if i.passesNull(input) {
		return CheckResult{OK: true, Message: MessageSuccess}
	}
	ok, err := i.def.Checker.eval(input, params)
	if err != nil {
		return CheckResult{OK: false, Message: err.Error()}
	}
	if !ok {
		return CheckResult{OK: false, Message: MessageFailure, Code: CodeCheckFailure}
	}
	return CheckResult{OK: true, Message: MessageSuccess}
}

// Parse runs the parser. Parser errors are returned and panics propagate.
func (i *Item) Parse(input any) (any, error) {
	if i.def.Parser == nil || i.passesNull(input) {
		return input, nil
	}
	return i.def.Parser(input)
}

// Format runs the formatter. Formatter errors are returned and panics
// propagate.
func (i *Item) Format(input any) (any, error) {
	if i.def.Formatter == nil || i.passesNull(input) {
		return input, nil
	}
	return i.def.Formatter(input)
}

// CheckParams validates params with the definition's ParamsChecker. Absent or
// empty params are accepted unless ParamsRequired is set.
func (i *Item) CheckParams(params any) (err error) {
	if i.def.ParamsChecker == nil {
		return nil
	}
	if !i.def.ParamsRequired && isEmptyParams(params) {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %s", ErrInvalidParams, i.name, panicMessage(r))
		}
	}()
	if checkErr := i.def.ParamsChecker(params); checkErr != nil {
		if errors.Is(checkErr, ErrInvalidParams) {
			return fmt.Errorf("%s: %w", i.name, checkErr)
		}
		return fmt.Errorf("%w: %s: %v", ErrInvalidParams, i.name, checkErr)
	}
	return nil
}

// Value runs parse, check and format in order. format overrides the
// definition's DefaultFormat when given. Nil params are replaced by an empty
// map. Data errors never escape as panics or errors: every failure is
// reported in the returned result.
func (i *Item) Value(input, params any, format ...bool) (result ValueResult) {
	current := input
	defer func() {
		if r := recover(); r != nil {
			result = failure(CodeUnknownFailure, panicMessage(r), current)
		}
	}()

	parsed, err := guard(i.Parse, current)
	if err != nil {
		return failure(CodeParseFailure, err.Error(), input)
	}
	current = parsed

	if params == nil {
		params = map[string]any{}
	}
	if check := i.Check(current, params); !check.OK {
		return failure(CodeCheckFailure, check.Message, current)
	}

	doFormat := i.def.DefaultFormat
	if len(format) > 0 {
		doFormat = format[0]
	}
	if !doFormat {
		return success(current)
	}

	formatted, err := guard(i.Format, current)
	if err != nil {
		return failure(CodeFormatFailure, err.Error(), current)
	}
	return success(formatted)
}

// guard turns a panicking stage into an error so each stage keeps its own
// failure code.
func guard(stage func(any) (any, error), input any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, errors.New(panicMessage(r))
		}
	}()
	return stage(input)
}

func panicMessage(r any) string {
	switch v := r.(type) {
	case error:
		return v.Error()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
