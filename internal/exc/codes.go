// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package exc

// Diagnostic codes raised by the parser. The codes are stable; messages are
// not. Codes not listed in severityOverrides are errors.
const (
	// E001: catch-all for diagnostics without a more specific code.
	CodeGeneral = "E001"

	// E002: the current token cannot start or continue the construct being parsed.
	CodeUnexpectedToken = "E002"

	// E003: a required token is absent.
	CodeMissingToken = "E003"

	// E004: a literal does not parse as a number.
	CodeInvalidNumber = "E004"

	// E006: a name or name list is missing where the grammar requires one.
	CodeMissingName = "E006"

	// E007: a variable block appears directly under a property instead of
	// inside a GET or SET accessor.
	CodeVarBlockInProperty = "E007"

	// E008: an array bound is not a range statement.
	CodeExpectedRange = "E008"

	// E009: mismatched parenthesis kinds around a string size expression.
	CodeMismatchedParentheses = "E009"

	// E014: round parentheses around a string size expression where square
	// brackets are conventional.
	CodeUnusualParentheses = "E014"

	// E015: `POINTER TO` is accepted but type-unsafe.
	CodeTypeUnsafePointer = "E015"

	// E016: a return type carries an initializer; the value is ignored.
	CodeReturnValueIgnored = "E016"

	// E024: `{ref}` on a variable block other than VAR_INPUT.
	CodeInvalidByRef = "E024"

	// E027: a struct or enum used as a function return type.
	CodeUnsupportedReturnType = "E027"

	// E063: a generic binding names an unknown type nature.
	CodeUnknownTypeNature = "E063"

	// E105: the `{constant}` pragma outside builtin declarations.
	CodeConstPragmaNotAllowed = "E105"

	// E113: an interface method or property accessor with a non-empty body.
	CodeInterfaceDefaultImpl = "E113"

	// E114: more than one EXTENDS clause on a POU.
	CodeMultipleInheritance = "E114"
)

var severityOverrides = map[string]Severity{
	CodeUnusualParentheses:  SeverityWarning,
	CodeTypeUnsafePointer:   SeverityWarning,
	CodeReturnValueIgnored:  SeverityWarning,
	CodeMultipleInheritance: SeverityWarning,
}

// SeverityOf classifies a diagnostic code.
func SeverityOf(code string) Severity {
	if s, ok := severityOverrides[code]; ok {
		return s
	}
	return SeverityError
}
