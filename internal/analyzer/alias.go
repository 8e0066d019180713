package analyzer

import (
	"github.com/hashicorp/golang-lru/v2"
	"github.com/microsoft/typescript-go/shim/ast"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
)

// rawNameCacheSize bounds the per-session display name memo.
const rawNameCacheSize = 4096

// AliasResolver answers alias-related queries about checker types.
type AliasResolver struct {
	checker *shimchecker.Checker
	names   *lru.Cache[shimchecker.TypeId, string]
}

// NewAliasResolver creates an AliasResolver for one checker.
func NewAliasResolver(checker *shimchecker.Checker) *AliasResolver {
	names, _ := lru.New[shimchecker.TypeId, string](rawNameCacheSize)
	return &AliasResolver{checker: checker, names: names}
}

// Unwrap follows a named, non-generic alias to its declared target until no
// further progress is made. Instantiated generic aliases are left alone: their
// declared type is the uninstantiated body. Alias cycles stop at the last
// reached type.
func (r *AliasResolver) Unwrap(t *shimchecker.Type) *shimchecker.Type {
	seen := make(map[shimchecker.TypeId]bool)
	for t != nil && !seen[t.Id()] {
		seen[t.Id()] = true
		alias := shimchecker.Type_alias(t)
		if alias == nil || alias.Symbol() == nil || len(alias.TypeArguments()) > 0 {
			return t
		}
		target := shimchecker.Checker_getDeclaredTypeOfSymbol(r.checker, alias.Symbol())
		if target == nil || target == t {
			return t
		}
		t = target
	}
	return t
}

// RawName returns the nominal symbol name of t, falling back to its alias
// name and finally to the checker's rendering of the type.
func (r *AliasResolver) RawName(t *shimchecker.Type) string {
	if t == nil {
		return ""
	}
	if name, ok := r.names.Get(t.Id()); ok {
		return name
	}
	name := symbolName(t.Symbol())
	if name == "" {
		name = r.AliasName(t)
	}
	if name == "" {
		name = r.TypeText(t)
	}
	r.names.Add(t.Id(), name)
	return name
}

// AliasName returns the explicit alias name of t, or "" when t has no alias
// or the alias is anonymous.
func (r *AliasResolver) AliasName(t *shimchecker.Type) string {
	alias := shimchecker.Type_alias(t)
	if alias == nil {
		return ""
	}
	return symbolName(alias.Symbol())
}

// AliasTypeArguments returns the type arguments written at the reference site
// of an instantiated generic alias.
func (r *AliasResolver) AliasTypeArguments(t *shimchecker.Type) []*shimchecker.Type {
	alias := shimchecker.Type_alias(t)
	if alias == nil {
		return nil
	}
	return alias.TypeArguments()
}

// AliasTypeArgument resolves the type parameter param through the alias type
// arguments of t. It returns nil when t is not an alias instantiation or the
// parameter is not one of the alias's own parameters.
func (r *AliasResolver) AliasTypeArgument(t *shimchecker.Type, param *shimchecker.Type) *shimchecker.Type {
	args := r.AliasTypeArguments(t)
	if len(args) == 0 {
		return nil
	}
	if len(args) == 1 {
		return args[0]
	}
	alias := shimchecker.Type_alias(t)
	paramName := symbolName(param.Symbol())
	for _, decl := range alias.Symbol().Declarations {
		if decl.Kind != ast.KindTypeAliasDeclaration {
			continue
		}
		params := decl.AsTypeAliasDeclaration().TypeParameters
		if params == nil {
			continue
		}
		for i, p := range params.Nodes {
			if i < len(args) && p.Name().Text() == paramName {
				return args[i]
			}
		}
	}
	return nil
}

// TypeText renders t as TypeScript source text.
func (r *AliasResolver) TypeText(t *shimchecker.Type) (text string) {
	if t == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	return r.checker.TypeToString(t)
}

// symbolName returns the name of sym, or "" for anonymous and internal names.
func symbolName(sym *ast.Symbol) string {
	if sym == nil {
		return ""
	}
	name := sym.Name
	if name == "" || name == "__type" || name == "__object" || name == "__function" {
		return ""
	}
	// Internal symbol names (e.g. from Omit/Pick) start with \xfe.
	if name[0] == '\xfe' {
		return ""
	}
	return name
}
