// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package st

import (
	"context"
	"fmt"

	"gopkg.ieclang.org/compiler.go/internal/exc"
	"gopkg.ieclang.org/compiler.go/internal/plc"
)

// ParserST is a recursive descent parser for IEC-61131-3 structured text. It
// never fails outright: malformed input is reported through the reporter and
// skipped, and a compilation unit is always produced.
type ParserST struct {
	reporter exc.Reporter
	ids      plc.IdProvider
	linkage  plc.LinkageType
}

func NewParserST(reporter exc.Reporter, ids plc.IdProvider, linkage plc.LinkageType) *ParserST {
	return &ParserST{
		reporter: reporter,
		ids:      ids,
		linkage:  linkage,
	}
}

// unknownContainer is assigned to ACTIONS blocks with no name and no
// preceding declaration to attach to.
const unknownContainer = "__unknown__"

// Parse consumes the token stream into a compilation unit.
//
// compilationUnit = { interface | varGlobalBlock | varConfigBlock | pou
//                   | action | actions | typeBlock } .
func (self *ParserST) Parse(ctx context.Context, uri string, tokens plc.Iterator[*plc.Token]) (*plc.CompilationUnit, error) {
	s := newParseSession(ctx, uri, tokens, self.reporter, self.ids, self.linkage)
	unit := plc.NewCompilationUnit(uri)
	linkage := self.linkage
	constant := false
	for {
		switch s.cur.Type {
		case plc.TokenTypePropertyExternal:
			linkage = plc.LinkageExternal
			s.advance(ctx)
			continue
		case plc.TokenTypePropertyConstant:
			constant = true
			s.advance(ctx)
			continue
		case plc.TokenTypeKeywordInterface:
			// Default implementations inside interfaces are diagnosed and
			// dropped, so only the declaration part survives.
			iface, _ := s.parseInterface(ctx)
			unit.Interfaces = append(unit.Interfaces, iface)
		case plc.TokenTypeKeywordVarGlobal:
			unit.GlobalVars = append(unit.GlobalVars, s.parseVariableBlock(ctx, linkage))
		case plc.TokenTypeKeywordVarConfig:
			unit.VarConfig = append(unit.VarConfig, s.parseConfigVariables(ctx)...)
		case plc.TokenTypeKeywordProgram:
			s.parsePou(ctx, unit, plc.PouProgram, linkage, plc.TokenTypeKeywordEndProgram, constant)
			constant = false
		case plc.TokenTypeKeywordClass:
			s.parsePou(ctx, unit, plc.PouClass, linkage, plc.TokenTypeKeywordEndClass, constant)
			constant = false
		case plc.TokenTypeKeywordFunction:
			s.parsePou(ctx, unit, plc.PouFunction, linkage, plc.TokenTypeKeywordEndFunction, constant)
			constant = false
		case plc.TokenTypeKeywordFunctionBlock:
			s.parsePou(ctx, unit, plc.PouFunctionBlock, linkage, plc.TokenTypeKeywordEndFunctionBlock, constant)
			constant = false
		case plc.TokenTypeKeywordAction:
			if impl := s.parseAction(ctx, linkage, ""); impl != nil {
				unit.Implementations = append(unit.Implementations, impl)
			}
		case plc.TokenTypeKeywordActions:
			unit.Implementations = append(unit.Implementations, s.parseActions(ctx, linkage, lastContainer(unit))...)
		case plc.TokenTypeKeywordType:
			unit.UserTypes = append(unit.UserTypes, s.parseType(ctx)...)
		case plc.TokenTypeKeywordEndActions, plc.TokenTypeEOF:
			return unit, nil
		default:
			s.report(exc.CodeUnexpectedToken,
				fmt.Sprintf("unexpected token %s at start of declaration", s.cur.Type))
			s.advance(ctx)
		}
		linkage = self.linkage
	}
}

// lastContainer names the most recent declaration an unnamed ACTIONS block
// can attach its actions to.
func lastContainer(unit *plc.CompilationUnit) string {
	for x := len(unit.Pous) - 1; x >= 0; x = x - 1 {
		switch unit.Pous[x].Kind {
		case plc.PouProgram, plc.PouFunction, plc.PouFunctionBlock, plc.PouClass:
			return unit.Pous[x].Name
		}
	}
	return unknownContainer
}

// parseIdentifier consumes the current token as a name. On anything other
// than an identifier it reports, leaves the cursor alone, and returns false.
func (self *parseSession) parseIdentifier(ctx context.Context) (string, plc.Span, bool) {
	if self.cur.Type != plc.TokenTypeIdentifier {
		self.report(exc.CodeUnexpectedToken,
			fmt.Sprintf("expected Identifier but found %q", self.cur.Value))
		return "", plc.Span{}, false
	}
	name := self.sliceAndAdvance(ctx)
	return name, self.last.Span, true
}

// pou = pouKind name [ generics ] [ EXTENDS name ] [ IMPLEMENTS names ]
//       [ ':' returnType ] { variableBlock } { method | property } body endKeyword .
func (self *parseSession) parsePou(ctx context.Context, unit *plc.CompilationUnit, kind plc.PouKind, linkage plc.LinkageType, expectedEnd plc.TokenType, constant bool) {
	if constant && linkage != plc.LinkageBuiltIn {
		self.reportAt(self.last.Span.SpanTo(self.cur.Span), exc.CodeConstPragmaNotAllowed,
			"pragma {constant} is not allowed in POU declarations")
	}

	start := self.cur.Span
	self.advance(ctx)
	closers := []plc.TokenType{
		expectedEnd,
		plc.TokenTypeKeywordEndAction,
		plc.TokenTypeKeywordEndProgram,
		plc.TokenTypeKeywordEndFunction,
		plc.TokenTypeKeywordEndFunctionBlock,
		plc.TokenTypeKeywordEndClass,
	}
	type pouResult struct {
		pous  []*plc.Pou
		impls []*plc.Implementation
	}
	result := parseAnyInRegion(ctx, self, closers, func() pouResult {
		polyMode := self.parsePolymorphismMode(ctx, kind)
		name, nameSpan, _ := self.parseIdentifier(ctx)
		generics := self.parseGenerics(ctx)

		return withScope(self, name, func() pouResult {
			superClass := self.parseSuperClass(ctx)
			interfaces := self.parseInterfaceDeclarations(ctx)
			returnType := self.parseReturnType(ctx)

			var variableBlocks []*plc.VariableBlock
			for self.cur.Type.IsVarBlock() && self.cur.Type != plc.TokenTypeKeywordVarGlobal {
				variableBlocks = append(variableBlocks, self.parseVariableBlock(ctx, plc.LinkageInternal))
			}

			var pous []*plc.Pou
			var impls []*plc.Implementation
			var properties []*plc.PropertyBlock

			// Function blocks, classes and programs may carry method and
			// property declarations before their own body.
			for self.cur.Type == plc.TokenTypeKeywordMethod ||
				self.cur.Type == plc.TokenTypeKeywordProperty ||
				self.cur.Type == plc.TokenTypePropertyConstant {
				if kind != plc.PouFunctionBlock && kind != plc.PouClass && kind != plc.PouProgram {
					what := "methods"
					if self.cur.Type == plc.TokenTypeKeywordProperty {
						what = "properties"
					}
					self.report(exc.CodeGeneral,
						fmt.Sprintf("%s cannot be declared in a %s", what, kind))
				}
				if self.cur.Type == plc.TokenTypeKeywordProperty {
					if property := self.parseProperty(ctx); property != nil {
						properties = append(properties, property)
					}
					continue
				}
				isConst := self.tryConsume(ctx, plc.TokenTypePropertyConstant)
				if pou, impl := self.parseMethod(ctx, name, plc.DeclarationConcrete, linkage, isConst); pou != nil {
					pous = append(pous, pou)
					impls = append(impls, impl)
				}
			}

			impls = append(impls, self.parseImplementation(ctx, linkage, kind, name, name, len(generics) > 0, nameSpan, nil, false))

			pou := &plc.Pou{
				Name:           name,
				ID:             self.nextID(),
				Kind:           kind,
				VariableBlocks: variableBlocks,
				ReturnType:     returnType,
				Span:           start.SpanTo(self.cur.Span),
				NameSpan:       nameSpan,
				PolyMode:       polyMode,
				Generics:       generics,
				Linkage:        linkage,
				SuperClass:     superClass,
				Interfaces:     interfaces,
				Properties:     properties,
				IsConst:        constant,
			}
			return pouResult{
				pous:  append([]*plc.Pou{pou}, pous...),
				impls: impls,
			}
		})
	})

	// The region may have been closed by a foreign end keyword, which still
	// makes progress but deserves a diagnostic.
	if self.last.Type != expectedEnd {
		for _, closer := range closers {
			if self.last.Type == closer {
				self.reportAt(self.last.Span, exc.CodeUnexpectedToken,
					fmt.Sprintf("expected %s but found %s", expectedEnd, self.last.Type))
				break
			}
		}
	}

	unit.Pous = append(unit.Pous, result.pous...)
	unit.Implementations = append(unit.Implementations, result.impls...)
}

// generics = '<' name ':' typeNature { ',' name ':' typeNature } '>' .
func (self *parseSession) parseGenerics(ctx context.Context) []plc.GenericBinding {
	if !self.tryConsume(ctx, plc.TokenTypeOperatorLess) {
		return nil
	}
	return parseAnyInRegion(ctx, self, []plc.TokenType{plc.TokenTypeOperatorGreater}, func() []plc.GenericBinding {
		var generics []plc.GenericBinding
		for {
			if name, _, ok := self.parseIdentifier(ctx); ok {
				self.tryConsumeOrReport(ctx, plc.TokenTypeColon)
				if nature, _, ok := self.parseIdentifier(ctx); ok {
					generics = append(generics, plc.GenericBinding{
						Name:   name,
						Nature: self.parseTypeNature(ctx, nature),
					})
				}
			}
			if !self.tryConsume(ctx, plc.TokenTypeComma) || self.tryConsume(ctx, plc.TokenTypeOperatorGreater) {
				break
			}
		}
		return generics
	})
}

var typeNatures = map[string]plc.TypeNature{
	"ANY":            plc.TypeNatureAny,
	"ANY_DERIVED":    plc.TypeNatureDerived,
	"ANY_ELEMENTARY": plc.TypeNatureElementary,
	"ANY_MAGNITUDE":  plc.TypeNatureMagnitude,
	"ANY_NUM":        plc.TypeNatureNum,
	"ANY_REAL":       plc.TypeNatureReal,
	"ANY_INT":        plc.TypeNatureInt,
	"ANY_SIGNED":     plc.TypeNatureSigned,
	"ANY_UNSIGNED":   plc.TypeNatureUnsigned,
	"ANY_DURATION":   plc.TypeNatureDuration,
	"ANY_BIT":        plc.TypeNatureBit,
	"ANY_CHARS":      plc.TypeNatureChars,
	"ANY_STRING":     plc.TypeNatureString,
	"ANY_CHAR":       plc.TypeNatureChar,
	"ANY_DATE":       plc.TypeNatureDate,
	"__ANY_VLA":      plc.TypeNatureVLA,
}

func (self *parseSession) parseTypeNature(ctx context.Context, nature string) plc.TypeNature {
	if n, ok := typeNatures[nature]; ok {
		return n
	}
	self.reportAt(self.last.Span, exc.CodeUnknownTypeNature,
		fmt.Sprintf("unknown type nature %q", nature))
	return plc.TypeNatureAny
}

// interfaceDeclarations = IMPLEMENTS name { ',' name } .
func (self *parseSession) parseInterfaceDeclarations(ctx context.Context) []plc.Ident {
	var declarations []plc.Ident
	if !self.tryConsume(ctx, plc.TokenTypeKeywordImplements) {
		return declarations
	}
	if self.cur.Type != plc.TokenTypeIdentifier {
		self.reportAt(self.last.Span, exc.CodeMissingName,
			"expected a comma separated list of identifiers after IMPLEMENTS but got nothing")
		return declarations
	}
	for {
		switch self.cur.Type {
		case plc.TokenTypeIdentifier:
			name, span, _ := self.parseIdentifier(ctx)
			declarations = append(declarations, plc.Ident{Name: name, Span: span})
		case plc.TokenTypeComma:
			self.advance(ctx)
		default:
			return declarations
		}
	}
}

func (self *parseSession) parsePolymorphismMode(ctx context.Context, kind plc.PouKind) plc.PolymorphismMode {
	if kind != plc.PouClass && kind != plc.PouFunctionBlock && kind != plc.PouMethod {
		return plc.PolymorphismNone
	}
	if self.tryConsume(ctx, plc.TokenTypeKeywordFinal) {
		return plc.PolymorphismFinal
	}
	if self.tryConsume(ctx, plc.TokenTypeKeywordAbstract) {
		return plc.PolymorphismAbstract
	}
	return plc.PolymorphismNone
}

// superClass = EXTENDS name . Additional EXTENDS clauses are reported and
// dropped, keeping only the first.
func (self *parseSession) parseSuperClass(ctx context.Context) *plc.Ident {
	var extensions []plc.Ident
	for self.tryConsume(ctx, plc.TokenTypeKeywordExtends) {
		name, span, ok := self.parseIdentifier(ctx)
		if !ok {
			break
		}
		extensions = append(extensions, plc.Ident{Name: name, Span: span})
	}
	for _, extra := range extensions[min(len(extensions), 1):] {
		self.reportAt(extra.Span, exc.CodeMultipleInheritance,
			"multiple inheritance, a declaration can only be extended once")
	}
	if len(extensions) == 0 {
		return nil
	}
	return &extensions[0]
}

// returnType = ':' dataTypeDefinition . Initializers on return types are
// reported and ignored; struct and enum definitions are rejected.
func (self *parseSession) parseReturnType(ctx context.Context) plc.DataTypeDeclaration {
	if !self.tryConsume(ctx, plc.TokenTypeColon) {
		return nil
	}
	declaration, initializer := self.parseDataTypeDefinition(ctx, "")
	if declaration == nil {
		self.report(exc.CodeUnexpectedToken,
			fmt.Sprintf("expected a datatype but found %q", self.cur.Value))
		return nil
	}
	if initializer != nil {
		self.reportAt(initializer.GetSpan(), exc.CodeReturnValueIgnored,
			"return types cannot have a default value, the value will be ignored")
	}
	if definition, ok := declaration.(*plc.DataTypeDefinition); ok {
		switch definition.DataType.(type) {
		case *plc.EnumType, *plc.StructType:
			self.reportAt(declaration.GetSpan(), exc.CodeUnsupportedReturnType,
				"struct and enum types are not supported as a function return type")
		}
	}
	return declaration
}

// method = METHOD [ accessModifier ] [ FINAL | ABSTRACT ] [ OVERRIDE ] name
//          [ generics ] [ ':' returnType ] { variableBlock } body END_METHOD .
func (self *parseSession) parseMethod(ctx context.Context, parent string, declaration plc.DeclarationKind, linkage plc.LinkageType, constant bool) (*plc.Pou, *plc.Implementation) {
	type methodResult struct {
		pou  *plc.Pou
		impl *plc.Implementation
	}
	result := parseAnyInRegion(ctx, self, []plc.TokenType{plc.TokenTypeKeywordEndMethod}, func() methodResult {
		if constant && linkage != plc.LinkageBuiltIn {
			self.reportAt(self.last.Span.SpanTo(self.cur.Span), exc.CodeConstPragmaNotAllowed,
				"pragma {constant} is not allowed in method declarations")
		}

		start := self.cur.Span
		self.advance(ctx)

		access := self.parseAccessModifier(ctx)
		polyMode := self.parsePolymorphismMode(ctx, plc.PouMethod)
		overriding := self.tryConsume(ctx, plc.TokenTypeKeywordOverride)
		name, nameSpan, ok := self.parseIdentifier(ctx)
		if !ok {
			return methodResult{}
		}
		generics := self.parseGenerics(ctx)
		returnType := self.parseReturnType(ctx)

		var variableBlocks []*plc.VariableBlock
		for self.cur.Type.IsVarBlock() &&
			self.cur.Type != plc.TokenTypeKeywordVarGlobal &&
			self.cur.Type != plc.TokenTypeKeywordVarExternal {
			variableBlocks = append(variableBlocks, self.parseVariableBlock(ctx, plc.LinkageInternal))
		}

		callName := plc.QualifiedName(parent, name)
		impl := self.parseImplementation(ctx, linkage, plc.PouMethod, callName, callName, len(generics) > 0, nameSpan, &access, overriding)

		return methodResult{
			pou: &plc.Pou{
				Name: callName,
				ID:   self.nextID(),
				Kind: plc.PouMethod,
				Method: &plc.MethodDetail{
					Parent:      parent,
					Declaration: declaration,
				},
				VariableBlocks: variableBlocks,
				ReturnType:     returnType,
				Span:           start.SpanTo(self.cur.Span),
				NameSpan:       nameSpan,
				PolyMode:       polyMode,
				Generics:       generics,
				Linkage:        linkage,
				IsConst:        constant,
			},
			impl: impl,
		}
	})
	return result.pou, result.impl
}

// property = PROPERTY name ':' dataType { getBlock | setBlock } END_PROPERTY .
// Variable blocks belong inside the accessors; ones declared directly under
// the property are parsed for recovery and reported.
func (self *parseSession) parseProperty(ctx context.Context) *plc.PropertyBlock {
	self.advance(ctx)

	hasError := false
	name, nameSpan, ok := self.parseIdentifier(ctx)
	if !ok {
		hasError = true
		self.report(exc.CodeMissingName, "property definition is missing a name")
	}
	dataType := self.parseReturnType(ctx)
	if dataType == nil {
		hasError = true
		self.reportAt(self.last.Span, exc.CodeGeneral, "property definition is missing a datatype")
	}

	for self.cur.Type.IsVarBlock() {
		block := self.parseVariableBlock(ctx, plc.LinkageInternal)
		self.reportAt(block.Span, exc.CodeVarBlockInProperty,
			"variable blocks may only be defined within a GET or SET block in the context of properties")
	}

	var implementations []*plc.PropertyImplementation
	for self.cur.Type == plc.TokenTypeKeywordGet || self.cur.Type == plc.TokenTypeKeywordSet {
		span := self.cur.Span
		kind := plc.PropertyGet
		closer := plc.TokenTypeKeywordEndGet
		if self.cur.Type == plc.TokenTypeKeywordSet {
			kind = plc.PropertySet
			closer = plc.TokenTypeKeywordEndSet
		}
		self.advance(ctx)

		var variableBlocks []*plc.VariableBlock
		for self.cur.Type.IsVarBlock() {
			variableBlocks = append(variableBlocks, self.parseVariableBlock(ctx, plc.LinkageInternal))
		}
		body := self.parseBodyInRegion(ctx, []plc.TokenType{closer})
		implementations = append(implementations, &plc.PropertyImplementation{
			Kind:           kind,
			VariableBlocks: variableBlocks,
			Body:           body,
			Span:           span,
			EndSpan:        self.last.Span,
		})
	}

	self.tryConsumeOrReport(ctx, plc.TokenTypeKeywordEndProperty)

	if hasError {
		return nil
	}
	return &plc.PropertyBlock{
		Ident:           plc.Ident{Name: name, Span: nameSpan},
		DataType:        dataType,
		Implementations: implementations,
	}
}

func (self *parseSession) parseAccessModifier(ctx context.Context) plc.AccessModifier {
	switch {
	case self.tryConsume(ctx, plc.TokenTypeKeywordAccessPublic):
		return plc.AccessPublic
	case self.tryConsume(ctx, plc.TokenTypeKeywordAccessPrivate):
		return plc.AccessPrivate
	case self.tryConsume(ctx, plc.TokenTypeKeywordAccessInternal):
		return plc.AccessInternal
	default:
		self.tryConsume(ctx, plc.TokenTypeKeywordAccessProtected)
		return plc.AccessProtected
	}
}

// interfaceDecl = INTERFACE name [ EXTENDS names ] { method | property }
//                 END_INTERFACE .
func (self *parseSession) parseInterface(ctx context.Context) (*plc.Interface, []*plc.Implementation) {
	start := self.cur.Span
	self.tryConsumeOrReport(ctx, plc.TokenTypeKeywordInterface)

	var name string
	var nameSpan plc.Span
	if self.cur.Type == plc.TokenTypeIdentifier {
		name, nameSpan, _ = self.parseIdentifier(ctx)
	} else {
		self.reportAt(self.last.Span, exc.CodeMissingName,
			"expected a name for the interface definition but got nothing")
	}

	var extensions []plc.Ident
	if self.tryConsume(ctx, plc.TokenTypeKeywordExtends) {
		for self.cur.Type == plc.TokenTypeIdentifier {
			extName, extSpan, _ := self.parseIdentifier(ctx)
			extensions = append(extensions, plc.Ident{Name: extName, Span: extSpan})
			self.tryConsume(ctx, plc.TokenTypeComma)
		}
	}

	var methods []*plc.Pou
	var implementations []*plc.Implementation
	var properties []*plc.PropertyBlock
	for {
		if self.cur.Type == plc.TokenTypeKeywordMethod {
			pou, impl := self.parseMethod(ctx, name, plc.DeclarationAbstract, plc.LinkageInternal, false)
			if pou == nil {
				continue
			}
			if len(impl.Statements) > 0 {
				self.reportAt(impl.Statements[0].GetSpan(), exc.CodeInterfaceDefaultImpl,
					"interfaces cannot have a default implementation")
			}
			methods = append(methods, pou)
			implementations = append(implementations, impl)
			continue
		}
		if self.cur.Type == plc.TokenTypeKeywordProperty {
			property := self.parseProperty(ctx)
			if property == nil {
				continue
			}
			for _, impl := range property.Implementations {
				if len(impl.Body) > 0 {
					self.reportAt(impl.Body[0].GetSpan(), exc.CodeInterfaceDefaultImpl,
						"interfaces cannot have a default implementation")
				}
			}
			properties = append(properties, property)
			continue
		}
		break
	}

	self.tryConsumeOrReport(ctx, plc.TokenTypeKeywordEndInterface)

	return &plc.Interface{
		ID:         self.nextID(),
		Ident:      plc.Ident{Name: name, Span: nameSpan},
		Extensions: extensions,
		Methods:    methods,
		Properties: properties,
		Span:       start.SpanTo(self.last.Span),
	}, implementations
}

// parseImplementation collects the statement body belonging to a declaration.
// It stops at whatever token closes an open region; the caller owns both the
// region and the closing keyword.
func (self *parseSession) parseImplementation(ctx context.Context, linkage plc.LinkageType, kind plc.PouKind, callName string, typeName string, generic bool, nameSpan plc.Span, access *plc.AccessModifier, overriding bool) *plc.Implementation {
	start := self.cur.Span
	statements := self.parseBodyStandalone(ctx)
	return &plc.Implementation{
		Name:       callName,
		TypeName:   typeName,
		Linkage:    linkage,
		Kind:       kind,
		Statements: statements,
		Span:       start.SpanTo(self.last.Span),
		NameSpan:   nameSpan,
		EndSpan:    self.cur.Span,
		Overriding: overriding,
		Generic:    generic,
		Access:     access,
	}
}

// action = ACTION [ container '.' ] name body END_ACTION . The container is
// implied inside an ACTIONS block and mandatory outside of one.
func (self *parseSession) parseAction(ctx context.Context, linkage plc.LinkageType, container string) *plc.Implementation {
	self.advance(ctx)
	closers := []plc.TokenType{
		plc.TokenTypeKeywordEndAction,
		plc.TokenTypeKeywordEndProgram,
		plc.TokenTypeKeywordEndFunction,
		plc.TokenTypeKeywordEndFunctionBlock,
	}
	impl := parseAnyInRegion(ctx, self, closers, func() *plc.Implementation {
		nameOrContainer := self.sliceAndAdvance(ctx)
		nameSpan := self.last.Span

		name := nameOrContainer
		if container == "" {
			if !self.tryConsumeOrReport(ctx, plc.TokenTypeDot) {
				return nil
			}
			if self.cur.Type != plc.TokenTypeIdentifier {
				self.report(exc.CodeMissingToken,
					fmt.Sprintf("expected Identifier but found %s", self.cur.Type))
				return nil
			}
			container = nameOrContainer
			name = self.sliceAndAdvance(ctx)
			nameSpan = nameSpan.SpanTo(self.last.Span)
		}
		callName := plc.QualifiedName(container, name)
		return self.parseImplementation(ctx, linkage, plc.PouAction, callName, container, false, nameSpan, nil, false)
	})

	if self.last.Type != plc.TokenTypeKeywordEndAction {
		for _, closer := range closers {
			if self.last.Type == closer {
				self.reportAt(self.last.Span, exc.CodeUnexpectedToken,
					fmt.Sprintf("expected END_ACTION but found %s", self.last.Type))
				break
			}
		}
	}
	return impl
}

// actions = ACTIONS [ container ] { action } END_ACTIONS .
func (self *parseSession) parseActions(ctx context.Context, linkage plc.LinkageType, defaultContainer string) []*plc.Implementation {
	return parseAnyInRegion(ctx, self, []plc.TokenType{plc.TokenTypeKeywordEndActions}, func() []*plc.Implementation {
		self.advance(ctx)
		container := defaultContainer
		if self.cur.Type == plc.TokenTypeIdentifier {
			container = self.sliceAndAdvance(ctx)
		}
		var impls []*plc.Implementation
		for self.cur.Type != plc.TokenTypeKeywordEndActions && self.cur.Type != plc.TokenTypeEOF {
			if self.cur.Type != plc.TokenTypeKeywordAction {
				self.report(exc.CodeUnexpectedToken,
					fmt.Sprintf("expected ACTION but found %q", self.cur.Value))
				return impls
			}
			if impl := self.parseAction(ctx, linkage, container); impl != nil {
				impls = append(impls, impl)
			}
		}
		return impls
	})
}

// typeBlock = TYPE { name ':' fullDataTypeDefinition } END_TYPE .
func (self *parseSession) parseType(ctx context.Context) []*plc.UserTypeDeclaration {
	self.advance(ctx)
	return parseAnyInRegion(ctx, self, []plc.TokenType{plc.TokenTypeKeywordEndType}, func() []*plc.UserTypeDeclaration {
		var declarations []*plc.UserTypeDeclaration
		for !self.closesOpenRegion(self.cur.Type) {
			name := self.sliceAndAdvance(ctx)
			nameSpan := self.last.Span
			self.tryConsumeOrReport(ctx, plc.TokenTypeColon)

			declaration, initializer := self.parseFullDataTypeDefinition(ctx, name)
			if definition, ok := declaration.(*plc.DataTypeDefinition); ok {
				declarations = append(declarations, &plc.UserTypeDeclaration{
					DataType:    definition.DataType,
					Initializer: initializer,
					Span:        nameSpan,
					Scope:       self.scope.OrElse(""),
				})
			}
		}
		return declarations
	})
}

type typeWithInitializer struct {
	declaration plc.DataTypeDeclaration
	initializer plc.Node
}

// fullDataTypeDefinition = [ '{sized}' ] ( '...' | dataTypeDefinition [ '...' ] )
//                          ( ';' | END_STRUCT [ ';' ] ) .
func (self *parseSession) parseFullDataTypeDefinition(ctx context.Context, name string) (plc.DataTypeDeclaration, plc.Node) {
	endKeyword := plc.TokenTypeSemicolon
	if self.cur.Type == plc.TokenTypeKeywordStruct {
		endKeyword = plc.TokenTypeKeywordEndStruct
	}
	result := parseAnyInRegion(ctx, self, []plc.TokenType{endKeyword}, func() typeWithInitializer {
		sized := self.tryConsume(ctx, plc.TokenTypePropertySized)
		if self.tryConsume(ctx, plc.TokenTypeDotDotDot) {
			return typeWithInitializer{
				declaration: &plc.DataTypeDefinition{
					DataType: &plc.VarArgsType{Sized: sized},
					Span:     self.last.Span,
					Scope:    self.scope.OrElse(""),
				},
			}
		}
		declaration, initializer := self.parseDataTypeDefinition(ctx, name)
		if declaration == nil {
			return typeWithInitializer{}
		}
		if self.tryConsume(ctx, plc.TokenTypeDotDotDot) {
			return typeWithInitializer{
				declaration: &plc.DataTypeDefinition{
					DataType: &plc.VarArgsType{ReferencedType: declaration, Sized: sized},
					Span:     self.last.Span,
					Scope:    self.scope.OrElse(""),
				},
			}
		}
		return typeWithInitializer{declaration: declaration, initializer: initializer}
	})

	// Trailing semicolons after END_STRUCT are allowed.
	if endKeyword == plc.TokenTypeKeywordEndStruct {
		self.tryConsume(ctx, plc.TokenTypeSemicolon)
	}
	return result.declaration, result.initializer
}

// dataTypeDefinition = structType | arrayType | pointerType | enumType
//                    | stringType | typeReference .
func (self *parseSession) parseDataTypeDefinition(ctx context.Context, name string) (plc.DataTypeDeclaration, plc.Node) {
	start := self.cur.Span
	switch {
	case self.tryConsume(ctx, plc.TokenTypeKeywordStruct):
		variables := self.parseVariableList(ctx)
		return &plc.DataTypeDefinition{
			DataType: &plc.StructType{Name: name, Variables: variables},
			Span:     start.SpanTo(self.cur.Span),
			Scope:    self.scope.OrElse(""),
		}, nil
	case self.tryConsume(ctx, plc.TokenTypeKeywordArray):
		return self.parseArrayTypeDefinition(ctx, name)
	case self.tryConsume(ctx, plc.TokenTypeKeywordPointer):
		self.reportAt(self.last.Span, exc.CodeTypeUnsafePointer,
			"POINTER TO is type-unsafe, consider using REF_TO instead")
		if self.tryConsumeOrReport(ctx, plc.TokenTypeKeywordTo) {
			return self.parsePointerDefinition(ctx, name, start, plc.AutoDerefNone, false)
		}
		return nil, nil
	case self.tryConsume(ctx, plc.TokenTypeKeywordRef):
		return self.parsePointerDefinition(ctx, name, self.last.Span, plc.AutoDerefNone, true)
	case self.tryConsume(ctx, plc.TokenTypeParensOpen):
		return self.parseEnumTypeDefinition(ctx, name)
	case self.cur.Type == plc.TokenTypeKeywordString || self.cur.Type == plc.TokenTypeKeywordWideString:
		return self.parseStringTypeDefinition(ctx, name)
	case self.cur.Type == plc.TokenTypeIdentifier:
		return self.parseTypeReferenceTypeDefinition(ctx, name)
	default:
		self.report(exc.CodeUnexpectedToken,
			fmt.Sprintf("expected a datatype definition but found %s", self.cur.Type))
		return nil, nil
	}
}

func (self *parseSession) parsePointerDefinition(ctx context.Context, name string, start plc.Span, autoDeref plc.AutoDerefKind, typeSafe bool) (plc.DataTypeDeclaration, plc.Node) {
	declaration, initializer := self.parseDataTypeDefinition(ctx, "")
	if declaration == nil {
		return nil, nil
	}
	return &plc.DataTypeDefinition{
		DataType: &plc.PointerType{
			Name:           name,
			ReferencedType: declaration,
			AutoDeref:      autoDeref,
			TypeSafe:       typeSafe,
		},
		Span:  start.SpanTo(self.last.Span),
		Scope: self.scope.OrElse(""),
	}, initializer
}

// typeReference = name [ '(' expression ')' ] [ (':=' | 'REF=') expression ] .
// The parenthesized expression decides the shape: an expression list or a
// single reference declares an enum, anything else a subrange.
func (self *parseSession) parseTypeReferenceTypeDefinition(ctx context.Context, name string) (plc.DataTypeDeclaration, plc.Node) {
	start := self.cur.Span
	referencedType := self.sliceAndAdvance(ctx)

	var bounds plc.Node
	if self.tryConsume(ctx, plc.TokenTypeParensOpen) {
		bounds = self.parseExpression(ctx)
		if !self.tryConsumeOrReport(ctx, plc.TokenTypeParensClose) {
			return nil, nil
		}
	}
	span := start.SpanTo(self.last.Span)

	var initializer plc.Node
	if self.tryConsume(ctx, plc.TokenTypeAssignment) || self.tryConsume(ctx, plc.TokenTypeReferenceAssignment) {
		initializer = self.parseExpression(ctx)
	}

	if name == "" && bounds == nil {
		return &plc.DataTypeReference{ReferencedType: referencedType, Span: span}, initializer
	}

	var dataType plc.DataType
	switch bounds.(type) {
	case *plc.ExpressionList, *plc.ReferenceExpr, *plc.MemberExpr:
		// INT (red, green, blue) declares an enum; a single reference is an
		// enum with one element.
		dataType = &plc.EnumType{Name: name, NumericType: referencedType, Elements: bounds}
	default:
		dataType = &plc.SubRangeType{Name: name, ReferencedType: referencedType, Bounds: bounds}
	}
	return &plc.DataTypeDefinition{
		DataType: dataType,
		Span:     span,
		Scope:    self.scope.OrElse(""),
	}, initializer
}

// stringSizeExpression = '[' expression ']' | '(' expression ')' . Square
// brackets are conventional; round ones are accepted with a warning and
// mismatched kinds with an error.
func (self *parseSession) parseStringSizeExpression(ctx context.Context) plc.Node {
	opening := self.cur.Type
	openSpan := self.cur.Span
	if !self.tryConsume(ctx, plc.TokenTypeSquareOpen) && !self.tryConsume(ctx, plc.TokenTypeParensOpen) {
		return nil
	}
	closers := []plc.TokenType{plc.TokenTypeSquareClose, plc.TokenTypeParensClose}
	return parseAnyInRegion(ctx, self, closers, func() plc.Node {
		size := self.parseExpression(ctx)
		errorSpan := openSpan.SpanTo(self.cur.Span)
		mismatched := (opening == plc.TokenTypeParensOpen && self.cur.Type == plc.TokenTypeSquareClose) ||
			(opening == plc.TokenTypeSquareOpen && self.cur.Type == plc.TokenTypeParensClose)
		if mismatched {
			self.reportAt(errorSpan, exc.CodeMismatchedParentheses,
				"mismatched types of parentheses around string size expression")
		} else if opening == plc.TokenTypeParensOpen || self.cur.Type == plc.TokenTypeParensClose {
			self.reportAt(errorSpan, exc.CodeUnusualParentheses,
				"unusual type of parentheses around string size expression, consider using square parentheses")
		}
		return size
	})
}

// stringType = ( STRING | WSTRING ) [ stringSizeExpression ]
//              [ (':=' | 'REF=') expression ] .
func (self *parseSession) parseStringTypeDefinition(ctx context.Context, name string) (plc.DataTypeDeclaration, plc.Node) {
	text := self.cur.Value
	start := self.cur.Span
	wide := self.cur.Type == plc.TokenTypeKeywordWideString
	self.advance(ctx)

	size := self.parseStringSizeExpression(ctx)
	span := start.SpanTo(self.last.Span)

	var declaration plc.DataTypeDeclaration
	switch {
	case size != nil:
		declaration = &plc.DataTypeDefinition{
			DataType: &plc.StringType{Name: name, Wide: wide, Size: size},
			Span:     span,
			Scope:    self.scope.OrElse(""),
		}
	case name != "":
		declaration = &plc.DataTypeDefinition{
			DataType: &plc.SubRangeType{Name: name, ReferencedType: text},
			Span:     span,
			Scope:    self.scope.OrElse(""),
		}
	default:
		declaration = &plc.DataTypeReference{ReferencedType: text, Span: span}
	}

	var initializer plc.Node
	if self.tryConsume(ctx, plc.TokenTypeAssignment) || self.tryConsume(ctx, plc.TokenTypeReferenceAssignment) {
		initializer = self.parseExpression(ctx)
	}
	return declaration, initializer
}

// enumType = '(' expressionList ')' [ ':=' expression ] . Enums declared
// without a numeric type are backed by DINT.
func (self *parseSession) parseEnumTypeDefinition(ctx context.Context, name string) (plc.DataTypeDeclaration, plc.Node) {
	start := self.last.Span
	elements := parseAnyInRegion(ctx, self, []plc.TokenType{plc.TokenTypeParensClose}, func() plc.Node {
		return self.parseExpressionList(ctx)
	})
	var initializer plc.Node
	if self.tryConsume(ctx, plc.TokenTypeAssignment) {
		initializer = self.parseExpression(ctx)
	}
	return &plc.DataTypeDefinition{
		DataType: &plc.EnumType{Name: name, NumericType: plc.DintType, Elements: elements},
		Span:     start.SpanTo(self.last.Span),
		Scope:    self.scope.OrElse(""),
	}, initializer
}

// arrayType = ARRAY '[' ranges ']' OF dataTypeDefinition . A '*' bound
// declares a variable-length array.
func (self *parseSession) parseArrayTypeDefinition(ctx context.Context, name string) (plc.DataTypeDeclaration, plc.Node) {
	start := self.last.Span
	bounds := parseAnyInRegion(ctx, self, []plc.TokenType{plc.TokenTypeKeywordOf}, func() plc.Node {
		if !self.tryConsumeOrReport(ctx, plc.TokenTypeSquareOpen) {
			return nil
		}
		r := self.parseExpression(ctx)
		self.tryConsumeOrReport(ctx, plc.TokenTypeSquareClose)
		return r
	})
	if bounds == nil {
		return nil, nil
	}

	declaration, initializer := self.parseDataTypeDefinition(ctx, "")
	if declaration == nil {
		return nil, nil
	}

	isRange := func(node plc.Node) (variableLength bool, ok bool) {
		switch node.(type) {
		case *plc.RangeStatement:
			return false, true
		case *plc.VlaRangeStatement:
			return true, true
		}
		return false, false
	}
	variableLength, ok := isRange(bounds)
	if !ok {
		if list, isList := bounds.(*plc.ExpressionList); isList && len(list.Expressions) > 0 {
			variableLength, ok = isRange(list.Expressions[0])
		}
	}
	if !ok {
		self.reportAt(bounds.GetSpan(), exc.CodeExpectedRange,
			"expected a range statement as array bounds")
		variableLength = false
	}

	return &plc.DataTypeDefinition{
		DataType: &plc.ArrayType{
			Name:           name,
			Bounds:         bounds,
			ElementType:    declaration,
			VariableLength: variableLength,
		},
		Span:  start.SpanTo(declaration.GetSpan()),
		Scope: self.scope.OrElse(""),
	}, initializer
}

// variableBlock = blockKeyword [ '{ref}' ] [ CONSTANT ] [ RETAIN | NON_RETAIN ]
//                 [ accessModifier ] { variableLine } END_VAR .
func (self *parseSession) parseVariableBlock(ctx context.Context, linkage plc.LinkageType) *plc.VariableBlock {
	start := self.cur.Span
	kind, property := self.parseVariableBlockType(ctx)

	constant := self.tryConsume(ctx, plc.TokenTypeKeywordConstant)
	retain := self.tryConsume(ctx, plc.TokenTypeKeywordRetain)
	self.tryConsume(ctx, plc.TokenTypeKeywordNonRetain)
	access := self.parseAccessModifier(ctx)

	variables := parseAnyInRegion(ctx, self, []plc.TokenType{plc.TokenTypeKeywordEndVar}, func() []*plc.Variable {
		return self.parseVariableList(ctx)
	})

	// Constants without an initializer take their type's default value,
	// except for externals whose value is defined elsewhere.
	if constant && kind != plc.VariableBlockExternal {
		for _, variable := range variables {
			if variable.Initializer == nil {
				variable.Initializer = &plc.DefaultValue{NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: variable.Span}}
			}
		}
	}

	return &plc.VariableBlock{
		Kind:      kind,
		Property:  property,
		Constant:  constant,
		Retain:    retain,
		Access:    access,
		Linkage:   linkage,
		Variables: variables,
		Span:      start.SpanTo(self.last.Span),
	}
}

func (self *parseSession) parseVariableBlockType(ctx context.Context) (plc.VariableBlockKind, plc.ArgumentProperty) {
	blockType := self.consume(ctx).Type

	property := plc.ArgumentByVal
	if self.tryConsume(ctx, plc.TokenTypePropertyByRef) {
		if blockType != plc.TokenTypeKeywordVarInput {
			self.report(exc.CodeInvalidByRef,
				"invalid pragma location: only VAR_INPUT supports the {ref} property")
		}
		property = plc.ArgumentByRef
	}

	switch blockType {
	case plc.TokenTypeKeywordVarTemp:
		return plc.VariableBlockTemp, property
	case plc.TokenTypeKeywordVarInput:
		return plc.VariableBlockInput, property
	case plc.TokenTypeKeywordVarOutput:
		return plc.VariableBlockOutput, property
	case plc.TokenTypeKeywordVarGlobal:
		return plc.VariableBlockGlobal, property
	case plc.TokenTypeKeywordVarInOut:
		return plc.VariableBlockInOut, property
	case plc.TokenTypeKeywordVarExternal:
		return plc.VariableBlockExternal, property
	default:
		return plc.VariableBlockLocal, property
	}
}

func (self *parseSession) parseVariableList(ctx context.Context) []*plc.Variable {
	var variables []*plc.Variable
	for self.cur.Type == plc.TokenTypeIdentifier {
		variables = append(variables, self.parseVariableLine(ctx)...)
	}
	return variables
}

// configVariables = VAR_CONFIG { reference AT hardwareAccess ':' dataType ';' }
//                   END_VAR .
func (self *parseSession) parseConfigVariables(ctx context.Context) []*plc.ConfigVariable {
	return parseAnyInRegion(ctx, self, []plc.TokenType{plc.TokenTypeKeywordEndVar}, func() []*plc.ConfigVariable {
		self.advance(ctx)
		var variables []*plc.ConfigVariable
		for self.cur.Type == plc.TokenTypeIdentifier {
			variable := parseAnyInRegion(ctx, self, []plc.TokenType{plc.TokenTypeSemicolon}, func() *plc.ConfigVariable {
				return self.tryParseConfigVar(ctx)
			})
			if variable != nil {
				variables = append(variables, variable)
			}
		}
		return variables
	})
}

func (self *parseSession) tryParseConfigVar(ctx context.Context) *plc.ConfigVariable {
	start := self.cur.Span
	reference := self.parseReference(ctx)
	span := start.SpanTo(self.last.Span)

	if !self.tryConsume(ctx, plc.TokenTypeKeywordAt) {
		self.report(exc.CodeMissingToken, "expected AT but found "+self.cur.Type.String())
	}
	if self.cur.Type != plc.TokenTypeHardwareAccess {
		self.report(exc.CodeMissingToken, "expected a hardware access but found "+self.cur.Type.String())
		return nil
	}
	address := self.parseHardwareAccess(ctx)
	if address == nil {
		return nil
	}
	if !self.tryConsume(ctx, plc.TokenTypeColon) {
		self.report(exc.CodeMissingToken, "expected : but found "+self.cur.Type.String())
	}

	declaration, initializer := self.parseDataTypeDefinition(ctx, "")
	if declaration == nil {
		return nil
	}
	if initializer != nil {
		self.reportAt(initializer.GetSpan(), exc.CodeUnexpectedToken,
			"config variables cannot have an initializer")
	}
	return &plc.ConfigVariable{
		Reference: reference,
		DataType:  declaration,
		Address:   address,
		Span:      span,
	}
}

// aliasing handles `name AT other : type ;`, declaring name as an
// auto-dereferenced alias pointer initialized with the referenced variable.
func (self *parseSession) parseAliasing(ctx context.Context, name string, nameSpan plc.Span) *plc.Variable {
	reference := self.parseReference(ctx)
	if !self.tryConsume(ctx, plc.TokenTypeColon) {
		self.report(exc.CodeMissingToken, "expected : but found "+self.cur.Type.String())
	}

	declaration, _ := self.parsePointerDefinition(ctx, "", self.cur.Span, plc.AutoDerefAlias, true)
	if !self.tryConsume(ctx, plc.TokenTypeSemicolon) {
		self.report(exc.CodeMissingToken, "expected ; but found "+self.cur.Type.String())
	}
	if declaration == nil {
		return nil
	}
	return &plc.Variable{
		Name:        name,
		DataType:    declaration,
		Initializer: reference,
		Span:        nameSpan,
	}
}

// variableLine = name { ',' name } [ AT ( hardwareAccess | reference ) ]
//                ':' dataType [ ';' ] . Multiple names expand into one
//                variable per name sharing clones of type and initializer.
func (self *parseSession) parseVariableLine(ctx context.Context) []*plc.Variable {
	type namedSpan struct {
		name string
		span plc.Span
	}
	var names []namedSpan
	for self.cur.Type == plc.TokenTypeIdentifier {
		identifierEnd := self.cur.Span.End
		names = append(names, namedSpan{name: self.sliceAndAdvance(ctx), span: self.last.Span})

		if self.cur.Type == plc.TokenTypeColon || self.cur.Type == plc.TokenTypeKeywordAt {
			break
		}
		if !self.tryConsume(ctx, plc.TokenTypeComma) {
			self.reportAt(plc.Span{Start: identifierEnd, End: self.cur.Span.Start}, exc.CodeMissingToken,
				"expected : or , but found "+self.cur.Type.String())
		}
	}

	var address plc.Node
	if self.tryConsume(ctx, plc.TokenTypeKeywordAt) {
		switch self.cur.Type {
		case plc.TokenTypeHardwareAccess:
			address = self.parseHardwareAccess(ctx)
		case plc.TokenTypeIdentifier:
			if aliased := self.parseAliasing(ctx, names[0].name, names[0].span); aliased != nil {
				return []*plc.Variable{aliased}
			}
			return nil
		default:
			self.report(exc.CodeMissingToken,
				"expected a hardware access or identifier but found "+self.cur.Type.String())
		}
	}

	if !self.tryConsume(ctx, plc.TokenTypeColon) {
		self.report(exc.CodeMissingToken, "expected : but found "+self.cur.Type.String())
	}

	var declaration plc.DataTypeDeclaration
	var initializer plc.Node
	switch {
	case self.tryConsume(ctx, plc.TokenTypeKeywordReferenceTo):
		declaration, initializer = self.parsePointerDefinition(ctx, "", self.last.Span, plc.AutoDerefReference, true)
	case address != nil:
		declaration, initializer = self.parsePointerDefinition(ctx, "", self.last.Span, plc.AutoDerefAlias, true)
	default:
		declaration, initializer = self.parseFullDataTypeDefinition(ctx, "")
	}

	self.tryConsume(ctx, plc.TokenTypeSemicolon)

	if declaration == nil {
		return nil
	}
	variables := make([]*plc.Variable, 0, len(names))
	for x, name := range names {
		variableType := declaration
		variableInitializer := initializer
		variableAddress := address
		if x > 0 {
			variableType = plc.CloneDataTypeDeclaration(declaration)
			variableInitializer = plc.CloneNode(initializer)
			variableAddress = plc.CloneNode(address)
		}
		variables = append(variables, &plc.Variable{
			Name:        name.name,
			DataType:    variableType,
			Initializer: variableInitializer,
			Address:     variableAddress,
			Span:        name.span,
		})
	}
	return variables
}

// hardwareAccess = '%' direction width [ integer { '.' integer } ] . The
// template form `%I*` has no address segments.
func (self *parseSession) parseHardwareAccess(ctx context.Context) plc.Node {
	token := self.consume(ctx)
	if token.Access != plc.DirectAccessTemplate && self.cur.Type != plc.TokenTypeLiteralInteger {
		self.report(exc.CodeMissingToken, "expected an integer address but found "+self.cur.Type.String())
		return nil
	}
	var address []plc.Node
	if self.cur.Type == plc.TokenTypeLiteralInteger {
		for {
			segment := self.parseStrictLiteralInteger(ctx)
			if segment == nil {
				return nil
			}
			address = append(address, segment)
			if !self.tryConsume(ctx, plc.TokenTypeDot) {
				break
			}
		}
	}
	return &plc.HardwareAccess{
		NodeMeta:  plc.NodeMeta{ID: self.nextID(), Span: token.Span.SpanTo(self.last.Span)},
		Direction: token.Direction,
		Access:    token.Access,
		Address:   address,
	}
}
