package migration

import (
	"context"
	"testing"
	"testing/fstest"

	"skill-staffing/migrations"
)

func TestLoad_SortsAndSkipsForeignFiles(t *testing.T) {
	r := Runner{FS: fstest.MapFS{
		"V2__second.sql": {Data: []byte("SELECT 2;")},
		"V1__first.sql":  {Data: []byte("  SELECT 1;\n")},
		"README.md":      {Data: []byte("notes")},
		"embed.go":       {Data: []byte("package migrations")},
	}}

	migs, err := r.Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(migs) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migs))
	}
	if migs[0].Version != 1 || migs[0].Name != "first" || migs[0].SQL != "SELECT 1;" {
		t.Fatalf("unexpected first migration: %+v", migs[0])
	}
	if migs[1].Version != 2 {
		t.Fatalf("expected version 2, got %d", migs[1].Version)
	}
	if migs[0].Checksum == "" || migs[0].Checksum == migs[1].Checksum {
		t.Fatalf("expected distinct checksums")
	}
}

func TestLoad_RejectsDuplicateVersion(t *testing.T) {
	r := Runner{FS: fstest.MapFS{
		"V1__a.sql": {Data: []byte("SELECT 1;")},
		"V1__b.sql": {Data: []byte("SELECT 2;")},
	}}
	if _, err := r.Load(); err == nil {
		t.Fatalf("expected duplicate version error")
	}
}

func TestLoad_RejectsEmptyFile(t *testing.T) {
	r := Runner{FS: fstest.MapFS{"V1__empty.sql": {Data: []byte("   ")}}}
	if _, err := r.Load(); err == nil {
		t.Fatalf("expected empty file error")
	}
}

func TestLoad_EmbeddedSchema(t *testing.T) {
	migs, err := Runner{FS: migrations.Files}.Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(migs) < 2 || migs[0].Version != 1 {
		t.Fatalf("expected embedded migrations starting at V1, got %+v", migs)
	}
}

func TestRun_NilDB(t *testing.T) {
	if err := (Runner{}).Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}
