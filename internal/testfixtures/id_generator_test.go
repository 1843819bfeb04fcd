package testfixtures

import "testing"

func TestIDGeneratorSequence(t *testing.T) {
	gen := NewIDGenerator("acc")

	if got := gen.Next(); got != "acc-1" {
		t.Fatalf("first id = %q, want acc-1", got)
	}
	if got := gen.Next(); got != "acc-2" {
		t.Fatalf("second id = %q, want acc-2", got)
	}

	gen.SetCounter(41)
	if got := gen.Next(); got != "acc-42" {
		t.Fatalf("id after reset = %q, want acc-42", got)
	}
}

func TestIDGeneratorDefaultsPrefix(t *testing.T) {
	gen := NewIDGenerator("")
	if got := gen.Next(); got != "id-1" {
		t.Fatalf("id = %q, want id-1", got)
	}
}

func TestNilIDGeneratorYieldsEmpty(t *testing.T) {
	var gen *IDGenerator
	if got := gen.NextFunc()(); got != "" {
		t.Fatalf("id = %q, want empty", got)
	}
}
