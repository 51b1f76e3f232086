package builder

import (
	"strconv"
	"strings"

	"github.com/hsmgo/statechart"
)

// Expr returns a GuardFunc evaluating a simple "key op value" expression
// against the interpreter's extended-state store. Supported
// operators: ==, !=, >, <. value is parsed as a float, then "true"/"false"/
// "nil", falling back to a plain string comparison.
func Expr(key, op, value string) statechart.GuardFunc {
	return func(ec *statechart.EvalContext) bool {
		if ec.Ext == nil {
			return false
		}
		return evalExpr(ec.Ext.Get(key), op, value)
	}
}

func evalExpr(v any, op, value string) bool {
	switch op {
	case "==":
		return exprEquals(v, value)
	case "!=":
		return !exprEquals(v, value)
	case ">":
		fv, fok := toFloat(v)
		target, err := strconv.ParseFloat(value, 64)
		return fok && err == nil && fv > target
	case "<":
		fv, fok := toFloat(v)
		target, err := strconv.ParseFloat(value, 64)
		return fok && err == nil && fv < target
	default:
		return false
	}
}

func exprEquals(v any, value string) bool {
	switch strings.TrimSpace(value) {
	case "true":
		return v == true
	case "false":
		return v == false
	case "nil":
		return v == nil
	}
	if target, err := strconv.ParseFloat(value, 64); err == nil {
		if fv, ok := toFloat(v); ok {
			return fv == target
		}
	}
	if s, ok := v.(string); ok {
		return s == value
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
