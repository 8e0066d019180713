package analyzer

import (
	"fmt"
	"log/slog"

	"github.com/microsoft/typescript-go/shim/ast"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	shimscanner "github.com/microsoft/typescript-go/shim/scanner"
	"github.com/pkg/errors"
	"github.com/tsreflect/tsreflect/internal/compiler"
	"github.com/tsreflect/tsreflect/internal/metadata"
)

// ExtractOptions selects which declarations the walker reflects.
type ExtractOptions struct {
	// TargetFiles are doublestar patterns; empty means every program source file.
	TargetFiles []string
	// RequiredMarkers keeps only classes carrying one of these decorators.
	// Empty means no filter.
	RequiredMarkers []string
	// PublicOnly drops private, protected and #private methods.
	PublicOnly bool
	// ExcludeOverrides drops methods that override a base class member.
	ExcludeOverrides bool
}

// DeclarationWalker drives the TypeMapper over class declarations and
// records their reflected shape in a Registry.
type DeclarationWalker struct {
	program  *shimcompiler.Program
	checker  *shimchecker.Checker
	mapper   *TypeMapper
	registry *metadata.Registry
	warnings *WarningCollector
	rootDir  string
	logger   *slog.Logger
}

// NewDeclarationWalker resolves the session's well-known types and returns a
// walker recording into registry.
func NewDeclarationWalker(session *compiler.Session, registry *metadata.Registry, logger *slog.Logger) (*DeclarationWalker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	known, err := LoadWellKnownTypes(session.Program, session.Checker, session.AnchorFile)
	if err != nil {
		return nil, errors.Wrap(err, "load well-known types")
	}
	return &DeclarationWalker{
		program:  session.Program,
		checker:  session.Checker,
		mapper:   NewTypeMapper(session.Checker, known, logger),
		registry: registry,
		warnings: NewWarningCollector(),
		rootDir:  session.RootDir,
		logger:   logger,
	}, nil
}

// Mapper returns the walker's type mapper.
func (w *DeclarationWalker) Mapper() *TypeMapper {
	return w.mapper
}

// Registry returns the registry definitions are recorded in.
func (w *DeclarationWalker) Registry() *metadata.Registry {
	return w.registry
}

// Warnings returns the warnings collected so far.
func (w *DeclarationWalker) Warnings() []Warning {
	return w.warnings.Warnings
}

// Walk reflects every matching class in the program's target files. It only
// fails when the registry rejects a definition.
func (w *DeclarationWalker) Walk(opts ExtractOptions) error {
	required := make(map[string]bool, len(opts.RequiredMarkers))
	for _, m := range opts.RequiredMarkers {
		required[m] = true
	}

	for _, sf := range compiler.GetSourceFiles(w.program) {
		if !MatchesTargetFiles(sf.FileName(), w.rootDir, opts.TargetFiles) {
			continue
		}
		w.logger.Debug("walking file", "file", sf.FileName())
		if err := w.walkSourceFile(sf, required, opts); err != nil {
			return err
		}
	}
	return nil
}

func (w *DeclarationWalker) walkSourceFile(sf *ast.SourceFile, required map[string]bool, opts ExtractOptions) error {
	for _, stmt := range classDeclarations(sf.Statements) {
		classDecl := stmt.AsClassDeclaration()
		if classDecl.Name() == nil {
			continue
		}
		if !HasAnyMarker(ClassMarkers(stmt, w.checker), required) {
			continue
		}
		if extractJSDoc(stmt).Ignored {
			continue
		}

		def := w.ReflectClass(stmt, sf, opts)
		replaced, err := w.registry.Put(def)
		if err != nil {
			return err
		}
		if replaced {
			w.warnings.Add(sf.FileName(), nodeLine(sf, stmt), WarningDuplicateDefinition,
				fmt.Sprintf("definition %s was declared more than once; the declaration here replaces the earlier one", def.Name))
		}
		w.logger.Debug("reflected definition", "name", def.Name, "methods", len(def.Methods))
	}
	return nil
}

// ReflectClass builds the definition for one class declaration.
func (w *DeclarationWalker) ReflectClass(classNode *ast.Node, sf *ast.SourceFile, opts ExtractOptions) *metadata.Definition {
	classDecl := classNode.AsClassDeclaration()
	def := &metadata.Definition{
		Name:                  classDecl.Name().Text(),
		SourceFile:            sf.FileName(),
		Description:           extractJSDoc(classNode).Description,
		ConstructorParameters: []metadata.Property{},
		Methods:               make(map[string]metadata.Method),
	}

	var inherited map[string]bool
	if opts.ExcludeOverrides {
		inherited = w.inheritedMemberNames(classNode)
	}

	constructorSeen := false
	if classDecl.Members == nil {
		return def
	}
	for _, member := range classDecl.Members.Nodes {
		switch member.Kind {
		case ast.KindConstructor:
			if constructorSeen || !isPublicMember(member) {
				continue
			}
			constructorSeen = true
			ctor := member.AsConstructorDeclaration()
			for _, p := range w.parameters(ctor.Parameters, sf) {
				def.ConstructorParameters = append(def.ConstructorParameters, metadata.Property{
					Name:     p.Name,
					Optional: p.Type.Optional,
					Type:     p.Type,
				})
			}

		case ast.KindMethodDeclaration:
			name, ok := w.includeMember(member, opts, inherited)
			if !ok {
				continue
			}
			method := member.AsMethodDeclaration()
			def.Methods[name] = w.method(name, member, method.Parameters, method.Type, sf)

		case ast.KindPropertyDeclaration:
			fn := callableInitializer(member)
			if fn == nil || !w.exposesCallSignature(member) {
				continue
			}
			name, ok := w.includeMember(member, opts, inherited)
			if !ok {
				continue
			}
			params, returnType := functionSignatureNodes(member, fn)
			def.Methods[name] = w.method(name, member, params, returnType, sf)
		}
	}
	return def
}

// includeMember applies the static, visibility and override filters and
// returns the member's name.
func (w *DeclarationWalker) includeMember(member *ast.Node, opts ExtractOptions, inherited map[string]bool) (string, bool) {
	if ast.HasSyntacticModifier(member, ast.ModifierFlagsStatic) {
		return "", false
	}
	name := memberName(member)
	if name == "" {
		return "", false
	}
	if opts.PublicOnly && !isPublicMember(member) {
		return "", false
	}
	if opts.ExcludeOverrides && (ast.HasSyntacticModifier(member, ast.ModifierFlagsOverride) || inherited[name]) {
		return "", false
	}
	return name, true
}

func (w *DeclarationWalker) method(name string, member *ast.Node, params *ast.NodeList, returnType *ast.Node, sf *ast.SourceFile) metadata.Method {
	m := metadata.Method{
		Parameters:  w.parameters(params, sf),
		Description: extractJSDoc(member).Description,
	}
	if returnType == nil {
		m.ReturnType = w.inferredReturnType(member)
		if m.ReturnType.HasUnresolved() {
			w.warnings.Add(sf.FileName(), nodeLine(sf, member), WarningMissingReturnType,
				fmt.Sprintf("%s() has no return type annotation and its inferred return type could not be resolved", name))
		}
		return m
	}
	m.ReturnType = w.mapper.MapTypeNode(returnType, false)
	w.checkResolved(&m.ReturnType, sf, member, name+"() return type")
	return m
}

func (w *DeclarationWalker) parameters(list *ast.NodeList, sf *ast.SourceFile) []metadata.Parameter {
	params := []metadata.Parameter{}
	if list == nil {
		return params
	}
	for _, node := range list.Nodes {
		param := node.AsParameterDeclaration()
		name := nodeText(param.Name())
		optional := param.QuestionToken != nil || param.Initializer != nil || param.DotDotDotToken != nil

		var d metadata.Descriptor
		if param.Type != nil {
			d = w.mapper.MapTypeNode(param.Type, optional)
		} else {
			d = w.mapSymbolType(node, optional)
		}
		w.checkResolved(&d, sf, node, "parameter "+name)
		params = append(params, metadata.Parameter{Name: name, Type: d})
	}
	return params
}

// mapSymbolType maps the checker's type for an unannotated declaration.
func (w *DeclarationWalker) mapSymbolType(decl *ast.Node, optional bool) metadata.Descriptor {
	sym := w.checker.GetSymbolAtLocation(decl.Name())
	if sym == nil {
		return metadata.Unresolved(nodeText(decl), optional, "declaration has no symbol")
	}
	t := shimchecker.Checker_getTypeOfSymbol(w.checker, sym)
	if optional {
		t, _ = stripUndefined(t)
	}
	return w.mapper.Map(t, optional)
}

func (w *DeclarationWalker) checkResolved(d *metadata.Descriptor, sf *ast.SourceFile, node *ast.Node, what string) {
	if !d.HasUnresolved() {
		return
	}
	line := nodeLine(sf, node)
	w.warnings.Add(sf.FileName(), line, WarningTypeUnresolved, fmt.Sprintf("%s could not be fully resolved", what))
	w.logger.Warn("unresolved type", "file", sf.FileName(), "line", line, "member", what)
}

func (w *DeclarationWalker) exposesCallSignature(member *ast.Node) bool {
	return len(w.callSignatures(member)) > 0
}

// callSignatures returns the call signatures of a method or callable field.
func (w *DeclarationWalker) callSignatures(member *ast.Node) []*shimchecker.Signature {
	sym := w.checker.GetSymbolAtLocation(member.Name())
	if sym == nil {
		return nil
	}
	t := shimchecker.Checker_getTypeOfSymbol(w.checker, sym)
	if t == nil {
		return nil
	}
	t, _ = stripUndefined(t)
	return shimchecker.Checker_getSignaturesOfType(w.checker, t, shimchecker.SignatureKindCall)
}

// inferredReturnType maps the checker's return type for a member written
// without a return type annotation.
func (w *DeclarationWalker) inferredReturnType(member *ast.Node) metadata.Descriptor {
	sigs := w.callSignatures(member)
	if len(sigs) == 0 {
		return metadata.Unresolved("", false, "missing return type annotation")
	}
	t := shimchecker.Checker_getReturnTypeOfSignature(w.checker, sigs[0])
	if t == nil {
		return metadata.Unresolved("", false, "missing return type annotation")
	}
	return w.mapper.Map(t, false)
}

// inheritedMemberNames collects the method and callable field names declared
// anywhere up the extends chain of classNode.
func (w *DeclarationWalker) inheritedMemberNames(classNode *ast.Node) map[string]bool {
	names := make(map[string]bool)
	visited := map[*ast.Node]bool{classNode: true}
	for base := w.baseClass(classNode); base != nil && !visited[base]; base = w.baseClass(base) {
		visited[base] = true
		members := base.AsClassDeclaration().Members
		if members == nil {
			continue
		}
		for _, member := range members.Nodes {
			switch member.Kind {
			case ast.KindMethodDeclaration:
			case ast.KindPropertyDeclaration:
				if callableInitializer(member) == nil && !hasFunctionTypeAnnotation(member) {
					continue
				}
			default:
				continue
			}
			if name := memberName(member); name != "" {
				names[name] = true
			}
		}
	}
	return names
}

// baseClass returns the class declaration named in the extends clause of
// classNode, following import aliases.
func (w *DeclarationWalker) baseClass(classNode *ast.Node) *ast.Node {
	clauses := classNode.AsClassDeclaration().HeritageClauses
	if clauses == nil {
		return nil
	}
	for _, clauseNode := range clauses.Nodes {
		clause := clauseNode.AsHeritageClause()
		if clause.Token != ast.KindExtendsKeyword || clause.Types == nil || len(clause.Types.Nodes) == 0 {
			continue
		}
		expr := clause.Types.Nodes[0].AsExpressionWithTypeArguments().Expression
		sym := w.checker.GetSymbolAtLocation(expr)
		if sym == nil {
			return nil
		}
		if sym.Flags&ast.SymbolFlagsAlias != 0 {
			if aliased := w.checker.GetAliasedSymbol(sym); aliased != nil {
				sym = aliased
			}
		}
		for _, decl := range sym.Declarations {
			if decl.Kind == ast.KindClassDeclaration {
				return decl
			}
		}
		return nil
	}
	return nil
}

// classDeclarations returns the class declarations in statements, including
// those nested in namespace and module blocks, in source order.
func classDeclarations(statements *ast.NodeList) []*ast.Node {
	if statements == nil {
		return nil
	}
	var classes []*ast.Node
	for _, stmt := range statements.Nodes {
		switch stmt.Kind {
		case ast.KindClassDeclaration:
			classes = append(classes, stmt)
		case ast.KindModuleDeclaration:
			body := stmt.AsModuleDeclaration().Body
			// namespace a.b.c nests one declaration per segment.
			for body != nil && body.Kind == ast.KindModuleDeclaration {
				body = body.AsModuleDeclaration().Body
			}
			if body != nil && body.Kind == ast.KindModuleBlock {
				classes = append(classes, classDeclarations(body.AsModuleBlock().Statements)...)
			}
		}
	}
	return classes
}

// callableInitializer returns the arrow function or function expression a
// field is initialized with.
func callableInitializer(member *ast.Node) *ast.Node {
	init := member.AsPropertyDeclaration().Initializer
	if init == nil {
		return nil
	}
	for init.Kind == ast.KindParenthesizedExpression {
		init = init.AsParenthesizedExpression().Expression
	}
	switch init.Kind {
	case ast.KindArrowFunction, ast.KindFunctionExpression:
		return init
	}
	return nil
}

func hasFunctionTypeAnnotation(member *ast.Node) bool {
	typ := member.AsPropertyDeclaration().Type
	return typ != nil && typ.Kind == ast.KindFunctionType
}

// functionSignatureNodes picks the parameter list and return type node for a
// callable field, preferring a function type annotation over the initializer.
func functionSignatureNodes(member, fn *ast.Node) (*ast.NodeList, *ast.Node) {
	if typ := member.AsPropertyDeclaration().Type; typ != nil && typ.Kind == ast.KindFunctionType {
		ft := typ.AsFunctionTypeNode()
		return ft.Parameters, ft.Type
	}
	if fn.Kind == ast.KindArrowFunction {
		af := fn.AsArrowFunction()
		return af.Parameters, af.Type
	}
	fe := fn.AsFunctionExpression()
	return fe.Parameters, fe.Type
}

// isPublicMember reports whether member has neither a private/protected
// modifier nor a #private name.
func isPublicMember(member *ast.Node) bool {
	if ast.HasSyntacticModifier(member, ast.ModifierFlagsPrivate|ast.ModifierFlagsProtected) {
		return false
	}
	if name := member.Name(); name != nil && name.Kind == ast.KindPrivateIdentifier {
		return false
	}
	return true
}

// memberName returns the static name of a class member, or "" for computed names.
func memberName(member *ast.Node) string {
	name := member.Name()
	if name == nil {
		return ""
	}
	switch name.Kind {
	case ast.KindIdentifier, ast.KindPrivateIdentifier, ast.KindStringLiteral, ast.KindNumericLiteral:
		return name.Text()
	}
	return ""
}

// nodeLine returns the 1-based line of the first non-trivia character of node.
func nodeLine(sf *ast.SourceFile, node *ast.Node) int {
	text := sf.Text()
	pos := skipTrivia(text, node.Pos())
	return shimscanner.GetECMALineOfPosition(sf, pos) + 1
}

// skipTrivia advances pos past whitespace and comments.
func skipTrivia(text string, pos int) int {
	for pos < len(text) {
		switch {
		case text[pos] == ' ' || text[pos] == '\t' || text[pos] == '\n' || text[pos] == '\r':
			pos++
		case pos+1 < len(text) && text[pos] == '/' && text[pos+1] == '/':
			for pos < len(text) && text[pos] != '\n' {
				pos++
			}
		case pos+1 < len(text) && text[pos] == '/' && text[pos+1] == '*':
			end := pos + 2
			for end+1 < len(text) && !(text[end] == '*' && text[end+1] == '/') {
				end++
			}
			pos = end + 2
		default:
			return pos
		}
	}
	return len(text)
}
