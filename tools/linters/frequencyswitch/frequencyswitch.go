// Package frequencyswitch provides a linter that checks switch statements over
// domain.Frequency list every declared frequency.
//
// A default clause handles values that failed validation; it does not stand in
// for a missing frequency. Adding a fifth frequency therefore flags every
// switch that has to learn about it.
//
//	switch f {                                   // Bad: yearly missing
//	case domain.FrequencyDaily, domain.FrequencyWeekly, domain.FrequencyMonthly:
//	default:
//	}
//
// The linter respects //nolint and //nolint:frequencyswitch comments.
package frequencyswitch

import (
	"go/ast"
	"go/constant"
	"go/types"
	"sort"
	"strings"

	"golang.org/x/tools/go/analysis"
)

const (
	enumPackage = "domain"
	enumType    = "Frequency"
)

// Analyzer is the frequencyswitch analyzer.
var Analyzer = &analysis.Analyzer{
	Name: "frequencyswitch",
	Doc:  "checks that switches over domain.Frequency list every frequency",
	Run:  run,
}

func run(pass *analysis.Pass) (any, error) {
	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			sw, ok := n.(*ast.SwitchStmt)
			if !ok || sw.Tag == nil {
				return true
			}

			named := frequencyType(pass.TypesInfo.TypeOf(sw.Tag))
			if named == nil {
				return true
			}

			missing := missingValues(pass, named, sw)
			if len(missing) == 0 {
				return true
			}
			if hasNolintComment(pass, file, sw) {
				return true
			}

			pass.Reportf(sw.Pos(), "switch on %s.%s is missing %s", enumPackage, enumType, strings.Join(missing, ", "))
			return true
		})
	}

	return nil, nil
}

// frequencyType returns t as the Frequency named type, or nil.
func frequencyType(t types.Type) *types.Named {
	named, ok := t.(*types.Named)
	if !ok {
		return nil
	}
	obj := named.Obj()
	if obj.Name() != enumType || obj.Pkg() == nil || obj.Pkg().Name() != enumPackage {
		return nil
	}
	return named
}

// missingValues returns the names of declared constants of type named that no case lists.
func missingValues(pass *analysis.Pass, named *types.Named, sw *ast.SwitchStmt) []string {
	covered := make(map[string]bool)
	for _, stmt := range sw.Body.List {
		clause, ok := stmt.(*ast.CaseClause)
		if !ok {
			continue
		}
		for _, expr := range clause.List {
			tv, ok := pass.TypesInfo.Types[expr]
			if !ok || tv.Value == nil {
				continue
			}
			covered[tv.Value.ExactString()] = true
		}
	}

	var missing []string
	scope := named.Obj().Pkg().Scope()
	for _, name := range scope.Names() {
		c, ok := scope.Lookup(name).(*types.Const)
		if !ok || !types.Identical(c.Type(), named) {
			continue
		}
		if c.Val().Kind() == constant.Unknown {
			continue
		}
		if !covered[c.Val().ExactString()] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// hasNolintComment reports whether a nolint comment sits on the switch line or the line above.
func hasNolintComment(pass *analysis.Pass, file *ast.File, sw *ast.SwitchStmt) bool {
	line := pass.Fset.Position(sw.Pos()).Line

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
			if !strings.Contains(text, ":") || strings.Contains(text, "frequencyswitch") {
				return true
			}
		}
	}

	return false
}
