package store

import (
	"context"
	"testing"

	"github.com/lazypower/affect/internal/params"
)

// DB must satisfy the engine's configuration boundary.
var _ params.Provider = (*DB)(nil)

func TestLookupKeepsNumericEncoding(t *testing.T) {
	db := testDB(t)

	if err := db.SetParam("/emotion_generator/Eat", "Joy", 0.25); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	if err := db.SetParam("/emotion_generator/Eat", "Pride", int64(1)); err != nil {
		t.Fatalf("SetParam: %v", err)
	}

	got, err := db.Lookup(context.Background(), "/emotion_generator/Eat")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if v, ok := got["Joy"].(float64); !ok || v != 0.25 {
		t.Errorf("Joy = %#v, want float64 0.25", got["Joy"])
	}
	if v, ok := got["Pride"].(int64); !ok || v != 1 {
		t.Errorf("Pride = %#v, want int64 1", got["Pride"])
	}
}

func TestLookupMissingPath(t *testing.T) {
	db := testDB(t)

	got, err := db.Lookup(context.Background(), "/emotion_generator/Nothing")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != nil {
		t.Errorf("Lookup = %v, want nil", got)
	}
}

func TestSetParamUpdates(t *testing.T) {
	db := testDB(t)

	db.SetParam("/g/Eat", "Joy", 0.1)
	db.SetParam("/g/Eat", "Joy", 0.3)

	got, _ := db.Lookup(context.Background(), "/g/Eat")
	if len(got) != 1 || got["Joy"] != 0.3 {
		t.Errorf("Lookup = %v, want Joy=0.3 only", got)
	}
}

func TestReplaceAndDeleteParams(t *testing.T) {
	db := testDB(t)

	db.SetParam("/g/Eat", "Joy", 0.1)
	db.SetParam("/g/Eat", "Calm", 0.1)

	if err := db.ReplaceParams("/g/Eat", map[string]any{"Anger": -0.2}); err != nil {
		t.Fatalf("ReplaceParams: %v", err)
	}
	got, _ := db.Lookup(context.Background(), "/g/Eat")
	if len(got) != 1 || got["Anger"] != -0.2 {
		t.Errorf("after replace = %v, want Anger only", got)
	}

	n, err := db.DeleteParams("/g/Eat")
	if err != nil {
		t.Fatalf("DeleteParams: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	got, _ = db.Lookup(context.Background(), "/g/Eat")
	if got != nil {
		t.Errorf("after delete = %v, want nil", got)
	}
}

func TestListParamPaths(t *testing.T) {
	db := testDB(t)

	db.SetParam("/emotion_generator/not_Eat", "Anger", 0.1)
	db.SetParam("/emotion_generator/Eat", "Joy", 0.1)
	db.SetParam("/emotion_generator/Eat", "Calm", 0.1)
	db.SetParam("/emotion_generator/deep/row", "Joy", 0.1)
	db.SetParam("/other_node/Eat", "Joy", 0.1)

	paths, err := db.ListParamPaths("/emotion_generator")
	if err != nil {
		t.Fatalf("ListParamPaths: %v", err)
	}
	want := []string{"/emotion_generator/Eat", "/emotion_generator/deep/row", "/emotion_generator/not_Eat"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}
