package store

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func insert(t *testing.T, db *DB, m Message) {
	t.Helper()
	if err := db.InsertMessage(&m); err != nil {
		t.Fatal(err)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)

	// testDB already ran Migrate, so a second run must be a no-op.
	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}
	if result.Dirty {
		t.Error("migration left the database dirty")
	}
}

func TestMigrateDirty(t *testing.T) {
	db := testDB(t)
	if _, err := db.Exec(`UPDATE schema_migrations SET dirty = 1`); err != nil {
		t.Fatal(err)
	}

	result, err := db.Migrate()
	if !errors.Is(err, ErrDirty) {
		t.Fatalf("Migrate() error = %v, want ErrDirty", err)
	}
	if result == nil || !result.Dirty || result.Version != 1 {
		t.Errorf("result = %+v, want dirty at version 1", result)
	}
}

func TestOpenPragmas(t *testing.T) {
	db := testDB(t)

	var mode string
	if err := db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
	var fk int
	if err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatal(err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}

	want := "file:/tmp/x.db?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL"
	if got := dsn("/tmp/x.db"); got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
}

func TestMessageInsertAndList(t *testing.T) {
	db := testDB(t)

	insert(t, db, Message{ID: "m2", WaID: "A", From: "me", Body: "second", Status: "sent", Timestamp: 2000})
	insert(t, db, Message{ID: "m1", WaID: "A", From: "A", Name: "Alice", Body: "first", Status: "delivered", Timestamp: 1000})
	insert(t, db, Message{ID: "m3", WaID: "B", From: "B", Body: "other", Status: "delivered", Timestamp: 1500})

	msgs, err := db.ListMessages("A")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].ID != "m1" || msgs[1].ID != "m2" {
		t.Errorf("order = %s,%s, want m1,m2", msgs[0].ID, msgs[1].ID)
	}
	if msgs[1].StatusAt != 2000 {
		t.Errorf("status_at = %d, want timestamp 2000", msgs[1].StatusAt)
	}

	empty, err := db.ListMessages("nobody")
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("unknown conversation should list as empty, got %v", empty)
	}
}

func TestInsertDuplicateID(t *testing.T) {
	db := testDB(t)

	insert(t, db, Message{ID: "m1", WaID: "A", From: "A", Body: "hi", Status: "delivered", Timestamp: 1000})
	if err := db.InsertMessage(&Message{ID: "m1", WaID: "A", From: "A", Body: "again", Status: "delivered", Timestamp: 1000}); err == nil {
		t.Error("expected duplicate id to fail")
	}
}

func TestGetAndDeleteMessage(t *testing.T) {
	db := testDB(t)
	insert(t, db, Message{ID: "m1", WaID: "A", From: "A", Body: "hi", Status: "delivered", Timestamp: 1000})

	m, err := db.GetMessage("m1")
	if err != nil {
		t.Fatal(err)
	}
	if m == nil || m.Body != "hi" {
		t.Fatalf("got %v, want hi", m)
	}

	ok, err := db.DeleteMessage("m1")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("DeleteMessage reported missing for an existing id")
	}

	ok, err = db.DeleteMessage("m1")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("second delete should report missing")
	}

	m, err = db.GetMessage("m1")
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Errorf("expected nil after delete, got %v", m)
	}
}

func TestListConversations(t *testing.T) {
	db := testDB(t)

	insert(t, db, Message{ID: "a1", WaID: "A", From: "A", Name: "Alice", Body: "hi", Status: "delivered", Timestamp: 1000})
	insert(t, db, Message{ID: "a2", WaID: "A", From: "me", Body: "hey alice", Status: "sent", Timestamp: 3000})
	insert(t, db, Message{ID: "b1", WaID: "B", From: "B", Body: "yo", Status: "delivered", Timestamp: 2000})

	convs, err := db.ListConversations()
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2", len(convs))
	}
	if convs[0].WaID != "A" || convs[0].Last.ID != "a2" {
		t.Errorf("first = %s/%s, want A/a2", convs[0].WaID, convs[0].Last.ID)
	}
	// Newest message has no name and no contact exists, so the wa_id is used.
	if convs[0].Name != "A" {
		t.Errorf("name = %q, want A", convs[0].Name)
	}
	if convs[1].WaID != "B" || convs[1].Last.Body != "yo" {
		t.Errorf("second = %s/%q, want B/yo", convs[1].WaID, convs[1].Last.Body)
	}

	if err := db.UpsertContact(&Contact{WaID: "A", Name: "Alice"}); err != nil {
		t.Fatal(err)
	}
	convs, err = db.ListConversations()
	if err != nil {
		t.Fatal(err)
	}
	if convs[0].Name != "Alice" {
		t.Errorf("name = %q, want contact name Alice", convs[0].Name)
	}

	n, err := db.ConversationCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("conversation count = %d, want 2", n)
	}
}

func TestContact(t *testing.T) {
	db := testDB(t)

	if err := db.UpsertContact(&Contact{WaID: "A", Name: "Alice"}); err != nil {
		t.Fatal(err)
	}
	// An empty name must not erase the known one.
	if err := db.UpsertContact(&Contact{WaID: "A"}); err != nil {
		t.Fatal(err)
	}
	c, err := db.GetContact("A")
	if err != nil {
		t.Fatal(err)
	}
	if c == nil || c.Name != "Alice" {
		t.Errorf("got %v, want Alice", c)
	}

	c, err = db.GetContact("missing")
	if err != nil {
		t.Fatal(err)
	}
	if c != nil {
		t.Errorf("expected nil for missing contact")
	}
}

func TestAdvanceStatus(t *testing.T) {
	db := testDB(t)
	old := time.Now().Add(-time.Minute).UnixMilli()
	fresh := time.Now().UnixMilli()

	insert(t, db, Message{ID: "old", WaID: "A", From: "me", Body: "1", Status: "sent", Timestamp: old})
	insert(t, db, Message{ID: "fresh", WaID: "A", From: "me", Body: "2", Status: "sent", Timestamp: fresh})
	insert(t, db, Message{ID: "inbound", WaID: "A", From: "A", Body: "3", Status: "sent", Timestamp: old})

	ids, err := db.AdvanceStatus("me", "sent", "delivered", 10*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "old" {
		t.Fatalf("advanced %v, want [old]", ids)
	}

	m, err := db.GetMessage("old")
	if err != nil {
		t.Fatal(err)
	}
	if m.Status != "delivered" {
		t.Errorf("status = %q, want delivered", m.Status)
	}
	if m.StatusAt < fresh {
		t.Errorf("status_at not refreshed: %d", m.StatusAt)
	}

	// Just advanced, so not old enough to move on yet.
	ids, err = db.AdvanceStatus("me", "delivered", "read", 10*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("advanced %v too early", ids)
	}
}
