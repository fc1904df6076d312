package scanstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "scans.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save assigns id and timestamp", func(t *testing.T) {
		s := testStore(t)
		saved, err := s.Save(ctx, &Scan{
			Filename:     "license.png",
			DetectedType: "driving_license",
			Fields:       map[string]string{"firstName": "JOHN"},
		})
		if err != nil {
			t.Fatal(err)
		}
		if saved.ID == "" {
			t.Error("expected generated id")
		}
		if saved.CreatedAt.IsZero() {
			t.Error("expected assigned timestamp")
		}
	})

	t.Run("round trip", func(t *testing.T) {
		s := testStore(t)
		saved, err := s.Save(ctx, &Scan{
			DetectedType: "passport",
			Reason:       "keywords favor passport",
			Fields:       map[string]string{"surname": "DOE", "passportNumber": "X1234567"},
		})
		if err != nil {
			t.Fatal(err)
		}

		got, err := s.Get(ctx, saved.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.DetectedType != "passport" || got.Reason != saved.Reason {
			t.Errorf("got %+v", got)
		}
		if got.Fields["surname"] != "DOE" {
			t.Errorf("fields = %v", got.Fields)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		s := testStore(t)
		if _, err := s.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		s := testStore(t)
		base := time.Now().UTC().Add(-time.Hour)
		for i := 0; i < 3; i++ {
			_, err := s.Save(ctx, &Scan{
				DetectedType: "passport",
				CreatedAt:    base.Add(time.Duration(i) * time.Minute),
				Filename:     string(rune('a' + i)),
			})
			if err != nil {
				t.Fatal(err)
			}
		}

		scans, err := s.List(ctx, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(scans) != 3 {
			t.Fatalf("got %d scans", len(scans))
		}
		if scans[0].Filename != "c" || scans[2].Filename != "a" {
			t.Errorf("order: %s, %s, %s", scans[0].Filename, scans[1].Filename, scans[2].Filename)
		}

		scans, err = s.List(ctx, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(scans) != 2 {
			t.Errorf("limit ignored, got %d", len(scans))
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := testStore(t)
		saved, err := s.Save(ctx, &Scan{DetectedType: "passport"})
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Delete(ctx, saved.ID); err != nil {
			t.Fatal(err)
		}
		if err := s.Delete(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second delete err = %v, want ErrNotFound", err)
		}
		if n, err := s.Count(ctx); err != nil || n != 0 {
			t.Errorf("count = %d, err = %v", n, err)
		}
	})
}
