// Package nosecretlog reports password values passed to the project logger.
package nosecretlog

import (
	"go/ast"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer flags calls on logger.Log whose arguments mention an
// identifier or field named like a password.
var Analyzer = &analysis.Analyzer{
	Name: "nosecretlog",
	Doc:  "prohibits passing password values to logger.Log",
	Run:  run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok || !isLoggerCall(call) {
				return true
			}

			for _, arg := range call.Args {
				if name, found := findSecret(arg); found {
					pass.Reportf(arg.Pos(), "do not log passwords (%s)", name)
				}
			}

			return true
		})
	}

	return nil, nil
}

// isLoggerCall matches logger.Log.<Method>(...).
func isLoggerCall(call *ast.CallExpr) bool {
	method, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	receiver, ok := method.X.(*ast.SelectorExpr)
	if !ok || receiver.Sel.Name != "Log" {
		return false
	}
	pkg, ok := receiver.X.(*ast.Ident)

	return ok && pkg.Name == "logger"
}

func findSecret(expr ast.Expr) (string, bool) {
	var (
		name  string
		found bool
	)
	ast.Inspect(expr, func(n ast.Node) bool {
		if found {
			return false
		}
		if _, isLiteral := n.(*ast.BasicLit); isLiteral {
			return false
		}
		ident, ok := n.(*ast.Ident)
		if ok && strings.Contains(strings.ToLower(ident.Name), "password") {
			name, found = ident.Name, true
			return false
		}
		return true
	})

	return name, found
}
