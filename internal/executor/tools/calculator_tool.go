package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"

	"github.com/expr-lang/expr"

	"github.com/smilemakc/workflow-engine/internal/executor"
)

// allowedCalculatorChars is every character the calculator may ever see in
// an expression: digits, the operators + - * / % ** ( ) , ., whitespace,
// and the letters and underscore that make up identifiers; each identifier
// is then checked against allowedCalculatorIdentifiers. Grounded on spec
// §4.5's allowed token set.
var allowedCalculatorChars = regexp.MustCompile(`^[0-9A-Za-z_+\-*/%().,\s]*$`)

var calculatorIdentifiers = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

var allowedCalculatorIdentifiers = map[string]bool{
	"PI": true, "E": true,
	"sqrt": true, "sin": true, "cos": true, "tan": true, "log": true,
	"abs": true, "round": true, "ceil": true, "floor": true, "pow": true,
}

// validateCalculatorExpression checks the ORIGINAL input string against the
// allow-listed token set before any evaluation is attempted (spec §9 Open
// Question (a): validate first, never rewrite-then-check). Any character or
// identifier outside the allow-list is rejected.
func validateCalculatorExpression(expression string) error {
	if !allowedCalculatorChars.MatchString(expression) {
		return fmt.Errorf("expression contains disallowed characters")
	}
	for _, ident := range calculatorIdentifiers.FindAllString(expression, -1) {
		if !allowedCalculatorIdentifiers[ident] {
			return fmt.Errorf("unknown identifier %q", ident)
		}
	}
	return nil
}

func calculatorEnv() map[string]any {
	return map[string]any{
		"PI":    math.Pi,
		"E":     math.E,
		"sqrt":  math.Sqrt,
		"sin":   math.Sin,
		"cos":   math.Cos,
		"tan":   math.Tan,
		"log":   math.Log,
		"abs":   math.Abs,
		"round": math.Round,
		"ceil":  math.Ceil,
		"floor": math.Floor,
		"pow":   math.Pow,
	}
}

// Calculator builds the CALCULATOR tool: calculator {expression}. Grounded
// on backend/pkg/engine/condition_cache.go's expr.Compile(..., expr.Env(env))
// idiom, adapted from a boolean condition evaluator to a numeric one scoped
// to the closed function/constant set spec §4.5 names.
func Calculator() executor.AgentTool {
	env := calculatorEnv()
	return executor.AgentTool{
		Def: executor.ToolDef{
			Name:        "calculator",
			Description: "Evaluates a restricted arithmetic expression (operators, parentheses, sqrt/sin/cos/tan/log/abs/round/ceil/floor/pow, PI, E).",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{"expression": map[string]any{"type": "string"}},
				"required":   []string{"expression"},
			},
		},
		Execute: func(_ context.Context, argumentsJSON string) (string, error) {
			var args struct {
				Expression string `json:"expression"`
			}
			if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
				return "Error: invalid tool arguments", nil
			}
			if err := validateCalculatorExpression(args.Expression); err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}

			program, err := expr.Compile(args.Expression, expr.Env(env), expr.AsFloat64())
			if err != nil {
				return fmt.Sprintf("Error: could not compile expression: %v", err), nil
			}
			result, err := expr.Run(program, env)
			if err != nil {
				return fmt.Sprintf("Error: could not evaluate expression: %v", err), nil
			}
			return fmt.Sprintf("%v", result), nil
		},
	}
}
