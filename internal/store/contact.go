package store

import (
	"database/sql"
	"time"
)

// UpsertContact inserts or updates a contact. An empty name never replaces a
// known one.
func (db *DB) UpsertContact(c *Contact) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO contacts (wa_id, name, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(wa_id) DO UPDATE SET
			name = CASE WHEN excluded.name != '' THEN excluded.name ELSE contacts.name END,
			updated_at = excluded.updated_at`,
		c.WaID, c.Name, now)
	return err
}

// GetContact returns a contact by wa_id, or nil.
func (db *DB) GetContact(waID string) (*Contact, error) {
	var c Contact
	err := db.QueryRow(`SELECT wa_id, name FROM contacts WHERE wa_id = ?`, waID).
		Scan(&c.WaID, &c.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ConversationCount returns the number of wa_ids with at least one message.
func (db *DB) ConversationCount() (int64, error) {
	var count int64
	err := db.QueryRow(`SELECT COUNT(DISTINCT wa_id) FROM messages`).Scan(&count)
	return count, err
}

// MessageCount returns the total number of messages.
func (db *DB) MessageCount() (int64, error) {
	var count int64
	err := db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}
