// Package moneyfloat provides a linter that flags float round trips of decimal amounts.
//
// Template amounts are exact decimals end to end. Building a decimal from a
// float64 or reading one back with InexactFloat64 loses that precision, so
// both are reported.
//
// Example violations:
//
//	decimal.NewFromFloat(12.34)        // Bad: binary float rounding
//	decimal.RequireFromString("12.34") // Good
//
//	amount.InexactFloat64() // Bad
//	amount.String()         // Good
//
// The linter respects //nolint and //nolint:moneyfloat comments.
package moneyfloat

import (
	"go/ast"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer is the moneyfloat analyzer.
var Analyzer = &analysis.Analyzer{
	Name: "moneyfloat",
	Doc:  "checks for float64 conversions of decimal amounts",
	Run:  run,
}

var floatConstructors = map[string]bool{
	"NewFromFloat":             true,
	"NewFromFloat32":           true,
	"NewFromFloatWithExponent": true,
}

func run(pass *analysis.Pass) (any, error) {
	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}

			var msg string
			switch {
			case floatConstructors[sel.Sel.Name] && isIdent(sel.X, "decimal"):
				msg = "decimal." + sel.Sel.Name + " loses precision; parse amounts from strings"
			case sel.Sel.Name == "InexactFloat64" && len(call.Args) == 0:
				msg = "InexactFloat64 loses precision; keep amounts as decimals"
			default:
				return true
			}

			if hasNolintComment(pass, file, call) {
				return true
			}
			pass.Reportf(call.Pos(), "%s", msg)
			return true
		})
	}

	return nil, nil
}

func isIdent(expr ast.Expr, name string) bool {
	ident, ok := expr.(*ast.Ident)
	return ok && ident.Name == name
}

// hasNolintComment reports whether a nolint comment sits on the call's line or the line above.
func hasNolintComment(pass *analysis.Pass, file *ast.File, call *ast.CallExpr) bool {
	line := pass.Fset.Position(call.Pos()).Line

	for _, cg := range file.Comments {
		for _, comment := range cg.List {
			commentLine := pass.Fset.Position(comment.Pos()).Line
			if commentLine != line && commentLine != line-1 {
				continue
			}
			text := comment.Text
			if !strings.Contains(text, "nolint") {
				continue
			}
			if !strings.Contains(text, ":") || strings.Contains(text, "moneyfloat") {
				return true
			}
		}
	}

	return false
}
