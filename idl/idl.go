package idl

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/idl/ast"
	"github.com/wippyai/mojom/idl/internal/parser"
	"github.com/wippyai/mojom/idl/internal/token"
)

// Dialect selects the grammar variant.
type Dialect = token.Dialect

const (
	// Modern rejects the conditional operator at lex time.
	Modern = token.Modern
	// Legacy accepts "a ? b : c" and keeps it as an unevaluated node.
	Legacy = token.Legacy
)

// ParseDialectName maps a configuration value to a Dialect.
func ParseDialectName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "modern":
		return Modern, nil
	case "legacy":
		return Legacy, nil
	}
	return Modern, errors.InvalidInput(errors.PhaseConfig, "unknown dialect "+name)
}

// Parse parses source in the modern dialect. filename is used only for
// diagnostics.
func Parse(filename, source string) (*ast.File, error) {
	return ParseDialect(filename, source, Modern)
}

// ParseDialect parses source using the given dialect.
func ParseDialect(filename, source string, dialect Dialect) (*ast.File, error) {
	tokens, err := token.Tokenize(filename, source, dialect)
	if err != nil {
		Logger().Debug("lex failed", zap.String("file", filename), zap.Error(err))
		return nil, err
	}
	f, err := parser.New(filename, source, tokens).Parse()
	if err != nil {
		Logger().Debug("parse failed", zap.String("file", filename), zap.Error(err))
		return nil, err
	}
	Logger().Debug("parsed",
		zap.String("file", filename),
		zap.Stringer("dialect", dialect),
		zap.Int("tokens", len(tokens)),
		zap.Int("imports", len(f.Imports)))
	return f, nil
}

// ParseExpr parses a standalone constant expression, such as a default value
// carried as text in the IR. Conditionals are accepted so that trees built
// by the legacy dialect survive a round trip; evaluation rejects them.
func ParseExpr(text string) (ast.Expr, error) {
	const name = "<expr>"
	tokens, err := token.Tokenize(name, text, Legacy)
	if err != nil {
		return nil, err
	}
	return parser.New(name, text, tokens).ParseExpr()
}
