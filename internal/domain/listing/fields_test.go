package listing

import (
	"encoding/json"
	"testing"
)

func TestSetField_TextAndBool(t *testing.T) {
	l := &Listing{Name: "Old Hotel"}
	if err := l.SetField("name", "New Hotel"); err != nil {
		t.Fatalf("SetField name: %v", err)
	}
	if l.Name != "New Hotel" {
		t.Fatalf("name not set: %q", l.Name)
	}
	if err := l.SetField("name", 12); err == nil {
		t.Fatalf("expected error for non-string name")
	}
	if err := l.SetField("is_active", "true"); err != nil || !l.IsActive {
		t.Fatalf("is_active not set: %v %v", l.IsActive, err)
	}
	if err := l.SetField("is_verified", 1.0); err == nil {
		t.Fatalf("expected error for numeric bool")
	}
	if err := l.SetField("owner", "x"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestSetField_CategoryRawID(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    uint64
		nilWant bool
		wantErr bool
	}{
		{name: "json number", in: float64(7), want: 7},
		{name: "json.Number", in: json.Number("8"), want: 8},
		{name: "int", in: 9, want: 9},
		{name: "digit string", in: " 10 ", want: 10},
		{name: "empty clears", in: "", nilWant: true},
		{name: "nil clears", in: nil, nilWant: true},
		{name: "fraction", in: 1.5, wantErr: true},
		{name: "zero", in: 0, wantErr: true},
		{name: "word", in: "hotels", wantErr: true},
		{name: "bool", in: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Listing{}
			err := l.SetField("category", tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if tt.nilWant {
				if l.CategoryID != nil {
					t.Fatalf("expected nil category, got %d", *l.CategoryID)
				}
				return
			}
			if l.CategoryID == nil || *l.CategoryID != tt.want {
				t.Fatalf("category = %v, want %d", l.CategoryID, tt.want)
			}
		})
	}
}

func TestFieldValueAndSnapshot(t *testing.T) {
	cat := uint64(3)
	l := &Listing{ListingID: "L1", Name: "Old Hotel", CategoryID: &cat}
	if v, ok := l.FieldValue("category"); !ok || v != uint64(3) {
		t.Fatalf("category value = %v %v", v, ok)
	}
	if _, ok := l.FieldValue("missing"); ok {
		t.Fatalf("unknown field reported as present")
	}
	snap := l.Snapshot()
	if snap["listing_id"] != "L1" || snap["name"] != "Old Hotel" {
		t.Fatalf("unexpected snapshot: %#v", snap)
	}
}
