// Package valuetype implements a registry of named value types. Each type
// bundles an optional parser, a checker (predicate or pattern) and an optional
// formatter, and coerces loosely typed input such as query-string values or
// decoded JSON into well typed values with pass/fail diagnostics.
//
// The pipeline always runs parse, then check, then (optionally) format. Each
// stage failure is tagged with a stable Code so consumers can tell malformed
// input (CodeParseFailure, CodeCheckFailure) from a broken custom formatter
// (CodeFormatFailure) without matching on messages.
//
// Registering a type T also registers NullableT, which accepts nil as valid
// and passes it through parse and format untouched. A Manager seeds the
// built-in catalog (Boolean, Date, String, Number, ENUM, ...) through the same
// Register path unless built-in types are disabled.
package valuetype
