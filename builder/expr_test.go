package builder_test

import (
	"context"
	"testing"

	"github.com/hsmgo/statechart"
	"github.com/hsmgo/statechart/builder"
)

func TestExprNumericComparison(t *testing.T) {
	cb := builder.New("application", "pending")
	cb.State("pending").
		On("review", "approved", builder.Expr("score", ">", "70"), nil).
		On("review", "rejected", nil, nil)
	cb.FinalState("approved")
	cb.FinalState("rejected")

	chart, err := cb.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ip, err := statechart.New(chart)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := ip.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ip.Ext().Set("score", 85)
	if _, err := ip.Send(ctx, "review", nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !ip.IsIn("approved") {
		t.Fatal("expected approved when score > 70")
	}
}

func TestExprStringEquality(t *testing.T) {
	g := builder.Expr("role", "==", "admin")
	ctx := &statechart.EvalContext{Ext: statechart.NewContext()}
	ctx.Ext.Set("role", "admin")
	if !g(ctx) {
		t.Fatal("expected role==admin to match")
	}
	ctx.Ext.Set("role", "guest")
	if g(ctx) {
		t.Fatal("expected role==admin not to match guest")
	}
}

func TestExprMissingExtIsFalse(t *testing.T) {
	g := builder.Expr("score", ">", "0")
	if g(&statechart.EvalContext{}) {
		t.Fatal("expected a guard with nil Ext to evaluate false")
	}
}
