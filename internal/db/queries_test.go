package db

import (
	"reflect"
	"testing"
)

func TestSaveLoad(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	if err := db.Save("pr_active_yoga_5min", `{"runId":"a"}`); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	value, ok, err := db.Load("pr_active_yoga_5min")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !ok {
		t.Fatal("Load() reported key missing")
	}
	if value != `{"runId":"a"}` {
		t.Errorf("Load() = %q", value)
	}
}

func TestLoad_Missing(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	value, ok, err := db.Load("nope")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if ok || value != "" {
		t.Errorf("Load() of missing key = %q, %v", value, ok)
	}
}

func TestSave_Overwrites(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	for _, v := range []string{"1", "2", "3"} {
		if err := db.Save("k", v); err != nil {
			t.Fatalf("Save(%s) failed: %v", v, err)
		}
	}

	value, _, _ := db.Load("k")
	if value != "3" {
		t.Errorf("Expected last write to win, got %q", value)
	}

	n, err := db.Count()
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 row, got %d", n)
	}
}

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	if err := db.Save("k", "v"); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := db.Delete("k"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, ok, _ := db.Load("k"); ok {
		t.Error("Key still present after Delete()")
	}

	// Deleting again is fine.
	if err := db.Delete("k"); err != nil {
		t.Errorf("Delete() of missing key failed: %v", err)
	}
}

func TestKeys(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	for _, k := range []string{"ai_feedback_b", "ai_feedback_a", "pr_runs_yoga_5min", "aiXfeedback_c"} {
		if err := db.Save(k, "{}"); err != nil {
			t.Fatalf("Save(%s) failed: %v", k, err)
		}
	}

	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{"underscore is literal", "ai_feedback_", []string{"ai_feedback_a", "ai_feedback_b"}},
		{"runs", "pr_runs_", []string{"pr_runs_yoga_5min"}},
		{"no match", "zzz", nil},
		{"empty prefix", "", []string{"aiXfeedback_c", "ai_feedback_a", "ai_feedback_b", "pr_runs_yoga_5min"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.Keys(tt.prefix)
			if err != nil {
				t.Fatalf("Keys() failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keys(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}
