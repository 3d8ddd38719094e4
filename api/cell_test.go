package api

import "testing"

func TestParseSQLRef_Unquotes(t *testing.T) {
	ref := ParseSQLRef(`"my schema".table`)
	if len(ref.Full) != 2 {
		t.Fatalf("Full = %v, want 2 components", ref.Full)
	}
	if ref.Full[0] != "my schema" || ref.Full[1] != "table" {
		t.Errorf("Full = %v", ref.Full)
	}
}

func TestSQLRef_String(t *testing.T) {
	ref := SQLRef{Full: []Name{"a", "b", "c"}}
	if got := ref.String(); got != "a.b.c" {
		t.Errorf("String() = %q, want a.b.c", got)
	}
}

func TestCellImpl_CanonicalVariableDataIsLast(t *testing.T) {
	c := NewCellImpl("c1", "x = 1\nx = 2\n", "k", LangPython)
	c.VariableData["x"] = []VariableData{
		{Kind: KindVariable},
		{Kind: KindVariable, QualifiedName: "second"},
	}
	vd, ok := c.CanonicalVariableData("x")
	if !ok {
		t.Fatal("expected canonical data for x")
	}
	if vd.QualifiedName != "second" {
		t.Errorf("QualifiedName = %q, want second", vd.QualifiedName)
	}
}

func TestCellImpl_StaleAndRuntimeState(t *testing.T) {
	c := NewCellImpl("c1", "", "k", LangPython)
	if c.Stale() {
		t.Error("new cell should not be stale")
	}
	c.SetStale(true)
	if !c.Stale() {
		t.Error("expected stale after SetStale(true)")
	}
	if c.RuntimeStateValue() != StateIdle {
		t.Errorf("RuntimeStateValue() = %v, want idle", c.RuntimeStateValue())
	}
	c.SetRuntimeState(StateDisabledTransitively)
	if !c.DisabledTransitively() {
		t.Error("expected DisabledTransitively() true")
	}
}
