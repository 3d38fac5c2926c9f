package domain

import (
	"testing"
	"time"
)

func TestIdempotency_Migration_UniquePathKey(t *testing.T) {
	db := newDomainDB(t)
	if err := db.AutoMigrate(&Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()
	if !m.HasTable(&Idempotency{}) {
		t.Fatalf("expected table %q to exist", Idempotency{}.TableName())
	}
	if !m.HasIndex(&Idempotency{}, "ux_path_key") {
		t.Fatalf("expected composite index ux_path_key to exist")
	}

	now := time.Now().UTC()
	rec := &Idempotency{ID: "r1", Path: "/add", Key: "k1", Status: 200, Body: []byte(`{}`), CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}

	// same key on another path is fine
	other := &Idempotency{ID: "r2", Path: "/other", Key: "k1", Status: 200, Body: []byte(`{}`), CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("insert other path: %v", err)
	}

	dup := &Idempotency{ID: "r3", Path: "/add", Key: "k1", Status: 200, Body: []byte(`{}`), CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	if err := db.Create(dup).Error; err == nil {
		t.Fatalf("expected unique violation for duplicate (path,key)")
	}

	var got Idempotency
	if err := db.First(&got, "id = ?", "r1").Error; err != nil {
		t.Fatalf("select: %v", err)
	}
	if got.Status != 200 || string(got.Body) != `{}` {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestIdempotency_Expired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r := Idempotency{ExpiresAt: now.Add(time.Minute)}
	if r.Expired(now) {
		t.Fatalf("record should be valid before ExpiresAt")
	}
	if !r.Expired(now.Add(time.Minute)) {
		t.Fatalf("record should expire exactly at ExpiresAt")
	}
	if (Idempotency{}).TableName() != "idempotency" {
		t.Fatalf("unexpected table name")
	}
}
