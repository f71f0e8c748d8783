package intel

import (
	"reflect"
	"testing"
)

func TestRecordMergeCommutativeAndIdempotent(t *testing.T) {
	a := Record{UPIIDs: []string{"x@ybl"}, PhoneNumbers: []string{"9876543210"}, SuspiciousKeywords: []string{"urgent"}}
	b := Record{UPIIDs: []string{"y@paytm", "x@ybl"}, BankAccounts: []string{"123456789012"}}

	ab := a.Merge(b)
	ba := b.Merge(a)
	if !reflect.DeepEqual(ab, ba) {
		t.Fatalf("merge not commutative: %+v vs %+v", ab, ba)
	}
	if again := ab.Merge(b); !reflect.DeepEqual(again, ab) {
		t.Fatalf("merge not idempotent: %+v vs %+v", again, ab)
	}
	if !reflect.DeepEqual(ab.UPIIDs, []string{"x@ybl", "y@paytm"}) {
		t.Fatalf("unexpected union %v", ab.UPIIDs)
	}
}

func TestRecordMergeIsMonotonic(t *testing.T) {
	acc := NewRecord()
	inputs := []string{
		"pay to ab@ybl",
		"hello there",
		"call 9876543210",
		"visit https://bit.ly/zz",
	}
	for _, text := range inputs {
		next := acc.Merge(Extract(text))
		if !next.Contains(acc) {
			t.Fatalf("merge dropped values: before %+v after %+v", acc, next)
		}
		acc = next
	}
	if !acc.HasActionable() {
		t.Fatalf("expected actionable intelligence, got %+v", acc)
	}
}

func TestRecordHasActionableIgnoresKeywords(t *testing.T) {
	r := Record{SuspiciousKeywords: []string{"urgent"}}
	if r.HasActionable() {
		t.Fatal("keywords alone must not count as actionable")
	}
	if r.Empty() {
		t.Fatal("record with keywords is not empty")
	}
	if !NewRecord().Empty() {
		t.Fatal("new record should be empty")
	}
}
