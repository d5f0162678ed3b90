//go:build integration

package bookmark

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/mandelview/pkg/errors"
)

func TestMongoStore_Integration(t *testing.T) {
	uri := os.Getenv("MANDELVIEW_MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s, err := NewMongoStore(ctx, uri, "mandelview_test")
	if err != nil {
		t.Skipf("mongo not available: %v", err)
	}
	defer s.Close()

	b, err := New("integration", complex(-0.75, 0.1), 0.05, 300)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Delete(ctx, b.ID)

	if err := s.Save(ctx, b); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := s.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Name != b.Name || got.Center() != b.Center() || got.MaxIterations != 300 {
		t.Errorf("Get() = %+v, want %+v", got, b)
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	found := false
	for _, x := range all {
		found = found || x.ID == b.ID
	}
	if !found {
		t.Error("List() should include the saved bookmark")
	}

	if err := s.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Get(ctx, b.ID); !errors.Is(err, errors.ErrCodeBookmarkNotFound) {
		t.Errorf("Get after Delete error = %v, want not found", err)
	}
}
