// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package plc

import "fmt"

// Token is one lexeme of structured text. Direction and Access are only
// meaningful when Type is TokenTypeHardwareAccess.
type Token struct {
	Span      Span
	Type      TokenType
	Value     string
	Direction HardwareAccessType
	Access    DirectAccessType
}

func (t *Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Type, t.Value, t.Span.Start.Line, t.Span.Start.Column)
}

// HardwareAccessType is the direction letter of a hardware address (%I, %Q, %M).
type HardwareAccessType uint8

const (
	HardwareAccessInput HardwareAccessType = iota
	HardwareAccessOutput
	HardwareAccessMemory
)

func (h HardwareAccessType) String() string {
	switch h {
	case HardwareAccessInput:
		return "I"
	case HardwareAccessOutput:
		return "Q"
	default:
		return "M"
	}
}

// DirectAccessType is the access width of a hardware address, or Template for
// the wildcard form `%I*`.
type DirectAccessType uint8

const (
	DirectAccessBit DirectAccessType = iota
	DirectAccessByte
	DirectAccessWord
	DirectAccessDWord
	DirectAccessLWord
	DirectAccessTemplate
)

func (d DirectAccessType) String() string {
	switch d {
	case DirectAccessBit:
		return "X"
	case DirectAccessByte:
		return "B"
	case DirectAccessWord:
		return "W"
	case DirectAccessDWord:
		return "D"
	case DirectAccessLWord:
		return "L"
	default:
		return "*"
	}
}

type TokenType uint16

const (
	TokenTypeUnknown TokenType = iota
	TokenTypeIdentifier
	TokenTypeLiteralInteger
	TokenTypeLiteralReal
	TokenTypeLiteralString
	TokenTypeLiteralWideString
	TokenTypeLiteralTrue
	TokenTypeLiteralFalse
	TokenTypeHardwareAccess

	TokenTypeColon
	TokenTypeSemicolon
	TokenTypeComma
	TokenTypeDot
	TokenTypeDotDot
	TokenTypeDotDotDot
	TokenTypeParensOpen
	TokenTypeParensClose
	TokenTypeSquareOpen
	TokenTypeSquareClose
	TokenTypeAssignment          // :=
	TokenTypeOutputAssignment    // =>
	TokenTypeReferenceAssignment // REF=
	TokenTypeDeref               // ^

	TokenTypeOperatorPlus
	TokenTypeOperatorMinus
	TokenTypeOperatorMultiplication
	TokenTypeOperatorExponent
	TokenTypeOperatorDivision
	TokenTypeOperatorEqual
	TokenTypeOperatorNotEqual
	TokenTypeOperatorLess
	TokenTypeOperatorGreater
	TokenTypeOperatorLessOrEqual
	TokenTypeOperatorGreaterOrEqual
	TokenTypeOperatorModulo
	TokenTypeOperatorAnd
	TokenTypeOperatorOr
	TokenTypeOperatorXor
	TokenTypeOperatorNot

	TokenTypeKeywordProgram
	TokenTypeKeywordEndProgram
	TokenTypeKeywordFunction
	TokenTypeKeywordEndFunction
	TokenTypeKeywordFunctionBlock
	TokenTypeKeywordEndFunctionBlock
	TokenTypeKeywordClass
	TokenTypeKeywordEndClass
	TokenTypeKeywordMethod
	TokenTypeKeywordEndMethod
	TokenTypeKeywordProperty
	TokenTypeKeywordEndProperty
	TokenTypeKeywordGet
	TokenTypeKeywordEndGet
	TokenTypeKeywordSet
	TokenTypeKeywordEndSet
	TokenTypeKeywordInterface
	TokenTypeKeywordEndInterface
	TokenTypeKeywordExtends
	TokenTypeKeywordImplements
	TokenTypeKeywordFinal
	TokenTypeKeywordAbstract
	TokenTypeKeywordOverride
	TokenTypeKeywordAccessPublic
	TokenTypeKeywordAccessPrivate
	TokenTypeKeywordAccessProtected
	TokenTypeKeywordAccessInternal
	TokenTypeKeywordAction
	TokenTypeKeywordEndAction
	TokenTypeKeywordActions
	TokenTypeKeywordEndActions

	TokenTypeKeywordVar
	TokenTypeKeywordVarInput
	TokenTypeKeywordVarOutput
	TokenTypeKeywordVarInOut
	TokenTypeKeywordVarGlobal
	TokenTypeKeywordVarTemp
	TokenTypeKeywordVarExternal
	TokenTypeKeywordVarConfig
	TokenTypeKeywordEndVar
	TokenTypeKeywordConstant
	TokenTypeKeywordRetain
	TokenTypeKeywordNonRetain
	TokenTypeKeywordAt

	TokenTypeKeywordType
	TokenTypeKeywordEndType
	TokenTypeKeywordStruct
	TokenTypeKeywordEndStruct
	TokenTypeKeywordArray
	TokenTypeKeywordOf
	TokenTypeKeywordPointer
	TokenTypeKeywordTo
	TokenTypeKeywordRef          // REF_TO
	TokenTypeKeywordReferenceTo  // REFERENCE TO
	TokenTypeKeywordString
	TokenTypeKeywordWideString

	TokenTypeKeywordIf
	TokenTypeKeywordThen
	TokenTypeKeywordElseIf
	TokenTypeKeywordElse
	TokenTypeKeywordEndIf
	TokenTypeKeywordCase
	TokenTypeKeywordEndCase
	TokenTypeKeywordFor
	TokenTypeKeywordBy
	TokenTypeKeywordDo
	TokenTypeKeywordEndFor
	TokenTypeKeywordWhile
	TokenTypeKeywordEndWhile
	TokenTypeKeywordRepeat
	TokenTypeKeywordUntil
	TokenTypeKeywordEndRepeat
	TokenTypeKeywordExit
	TokenTypeKeywordContinue
	TokenTypeKeywordReturn

	TokenTypePropertyExternal // {external}
	TokenTypePropertyConstant // {constant}
	TokenTypePropertyByRef    // {ref}
	TokenTypePropertySized    // {sized}

	TokenTypeEOF
)

var tokenTypeNames = map[TokenType]string{
	TokenTypeUnknown:                 "Unknown",
	TokenTypeIdentifier:              "Identifier",
	TokenTypeLiteralInteger:          "LiteralInteger",
	TokenTypeLiteralReal:             "LiteralReal",
	TokenTypeLiteralString:           "LiteralString",
	TokenTypeLiteralWideString:       "LiteralWideString",
	TokenTypeLiteralTrue:             "TRUE",
	TokenTypeLiteralFalse:            "FALSE",
	TokenTypeHardwareAccess:          "HardwareAccess",
	TokenTypeColon:                   ":",
	TokenTypeSemicolon:               ";",
	TokenTypeComma:                   ",",
	TokenTypeDot:                     ".",
	TokenTypeDotDot:                  "..",
	TokenTypeDotDotDot:               "...",
	TokenTypeParensOpen:              "(",
	TokenTypeParensClose:             ")",
	TokenTypeSquareOpen:              "[",
	TokenTypeSquareClose:             "]",
	TokenTypeAssignment:              ":=",
	TokenTypeOutputAssignment:        "=>",
	TokenTypeReferenceAssignment:     "REF=",
	TokenTypeDeref:                   "^",
	TokenTypeOperatorPlus:            "+",
	TokenTypeOperatorMinus:           "-",
	TokenTypeOperatorMultiplication:  "*",
	TokenTypeOperatorExponent:        "**",
	TokenTypeOperatorDivision:        "/",
	TokenTypeOperatorEqual:           "=",
	TokenTypeOperatorNotEqual:        "<>",
	TokenTypeOperatorLess:            "<",
	TokenTypeOperatorGreater:         ">",
	TokenTypeOperatorLessOrEqual:     "<=",
	TokenTypeOperatorGreaterOrEqual:  ">=",
	TokenTypeOperatorModulo:          "MOD",
	TokenTypeOperatorAnd:             "AND",
	TokenTypeOperatorOr:              "OR",
	TokenTypeOperatorXor:             "XOR",
	TokenTypeOperatorNot:             "NOT",
	TokenTypeKeywordProgram:          "PROGRAM",
	TokenTypeKeywordEndProgram:       "END_PROGRAM",
	TokenTypeKeywordFunction:         "FUNCTION",
	TokenTypeKeywordEndFunction:      "END_FUNCTION",
	TokenTypeKeywordFunctionBlock:    "FUNCTION_BLOCK",
	TokenTypeKeywordEndFunctionBlock: "END_FUNCTION_BLOCK",
	TokenTypeKeywordClass:            "CLASS",
	TokenTypeKeywordEndClass:         "END_CLASS",
	TokenTypeKeywordMethod:           "METHOD",
	TokenTypeKeywordEndMethod:        "END_METHOD",
	TokenTypeKeywordProperty:         "PROPERTY",
	TokenTypeKeywordEndProperty:      "END_PROPERTY",
	TokenTypeKeywordGet:              "GET",
	TokenTypeKeywordEndGet:           "END_GET",
	TokenTypeKeywordSet:              "SET",
	TokenTypeKeywordEndSet:           "END_SET",
	TokenTypeKeywordInterface:        "INTERFACE",
	TokenTypeKeywordEndInterface:     "END_INTERFACE",
	TokenTypeKeywordExtends:          "EXTENDS",
	TokenTypeKeywordImplements:       "IMPLEMENTS",
	TokenTypeKeywordFinal:            "FINAL",
	TokenTypeKeywordAbstract:         "ABSTRACT",
	TokenTypeKeywordOverride:         "OVERRIDE",
	TokenTypeKeywordAccessPublic:     "PUBLIC",
	TokenTypeKeywordAccessPrivate:    "PRIVATE",
	TokenTypeKeywordAccessProtected:  "PROTECTED",
	TokenTypeKeywordAccessInternal:   "INTERNAL",
	TokenTypeKeywordAction:           "ACTION",
	TokenTypeKeywordEndAction:        "END_ACTION",
	TokenTypeKeywordActions:          "ACTIONS",
	TokenTypeKeywordEndActions:       "END_ACTIONS",
	TokenTypeKeywordVar:              "VAR",
	TokenTypeKeywordVarInput:         "VAR_INPUT",
	TokenTypeKeywordVarOutput:        "VAR_OUTPUT",
	TokenTypeKeywordVarInOut:         "VAR_IN_OUT",
	TokenTypeKeywordVarGlobal:        "VAR_GLOBAL",
	TokenTypeKeywordVarTemp:          "VAR_TEMP",
	TokenTypeKeywordVarExternal:      "VAR_EXTERNAL",
	TokenTypeKeywordVarConfig:        "VAR_CONFIG",
	TokenTypeKeywordEndVar:           "END_VAR",
	TokenTypeKeywordConstant:         "CONSTANT",
	TokenTypeKeywordRetain:           "RETAIN",
	TokenTypeKeywordNonRetain:        "NON_RETAIN",
	TokenTypeKeywordAt:               "AT",
	TokenTypeKeywordType:             "TYPE",
	TokenTypeKeywordEndType:          "END_TYPE",
	TokenTypeKeywordStruct:           "STRUCT",
	TokenTypeKeywordEndStruct:        "END_STRUCT",
	TokenTypeKeywordArray:            "ARRAY",
	TokenTypeKeywordOf:               "OF",
	TokenTypeKeywordPointer:          "POINTER",
	TokenTypeKeywordTo:               "TO",
	TokenTypeKeywordRef:              "REF_TO",
	TokenTypeKeywordReferenceTo:      "REFERENCE TO",
	TokenTypeKeywordString:           "STRING",
	TokenTypeKeywordWideString:       "WSTRING",
	TokenTypeKeywordIf:               "IF",
	TokenTypeKeywordThen:             "THEN",
	TokenTypeKeywordElseIf:           "ELSIF",
	TokenTypeKeywordElse:             "ELSE",
	TokenTypeKeywordEndIf:            "END_IF",
	TokenTypeKeywordCase:             "CASE",
	TokenTypeKeywordEndCase:          "END_CASE",
	TokenTypeKeywordFor:              "FOR",
	TokenTypeKeywordBy:               "BY",
	TokenTypeKeywordDo:               "DO",
	TokenTypeKeywordEndFor:           "END_FOR",
	TokenTypeKeywordWhile:            "WHILE",
	TokenTypeKeywordEndWhile:         "END_WHILE",
	TokenTypeKeywordRepeat:           "REPEAT",
	TokenTypeKeywordUntil:            "UNTIL",
	TokenTypeKeywordEndRepeat:        "END_REPEAT",
	TokenTypeKeywordExit:             "EXIT",
	TokenTypeKeywordContinue:         "CONTINUE",
	TokenTypeKeywordReturn:           "RETURN",
	TokenTypePropertyExternal:        "{external}",
	TokenTypePropertyConstant:        "{constant}",
	TokenTypePropertyByRef:           "{ref}",
	TokenTypePropertySized:           "{sized}",
	TokenTypeEOF:                     "EOF",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", uint16(t))
}

// IsVarBlock reports whether the token opens one of the variable block forms
// that may appear inside a declaration body (VAR_CONFIG is top-level only).
func (t TokenType) IsVarBlock() bool {
	switch t {
	case TokenTypeKeywordVar, TokenTypeKeywordVarInput, TokenTypeKeywordVarOutput,
		TokenTypeKeywordVarInOut, TokenTypeKeywordVarGlobal, TokenTypeKeywordVarTemp,
		TokenTypeKeywordVarExternal:
		return true
	}
	return false
}
