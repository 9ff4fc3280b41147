package store

import (
	"database/sql"
	"time"
)

const messageColumns = `id, wa_id, from_id, name, body, status, timestamp, status_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(s scanner, m *Message) error {
	return s.Scan(&m.ID, &m.WaID, &m.From, &m.Name, &m.Body, &m.Status, &m.Timestamp, &m.StatusAt)
}

// InsertMessage stores a new message. StatusAt defaults to Timestamp.
func (db *DB) InsertMessage(m *Message) error {
	if m.StatusAt == 0 {
		m.StatusAt = m.Timestamp
	}
	_, err := db.Exec(`
		INSERT INTO messages (`+messageColumns+`, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.WaID, m.From, m.Name, m.Body, m.Status, m.Timestamp, m.StatusAt, time.Now().UnixMilli())
	return err
}

// GetMessage returns a message by id, or nil.
func (db *DB) GetMessage(id string) (*Message, error) {
	var m Message
	err := scanMessage(db.QueryRow(`SELECT `+messageColumns+` FROM messages WHERE id = ?`, id), &m)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMessages returns the messages of a conversation, oldest first.
func (db *DB) ListMessages(waID string) ([]Message, error) {
	rows, err := db.Query(`
		SELECT `+messageColumns+`
		FROM messages
		WHERE wa_id = ?
		ORDER BY timestamp ASC, rowid ASC`, waID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	msgs := []Message{}
	for rows.Next() {
		var m Message
		if err := scanMessage(rows, &m); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// DeleteMessage removes a message. It reports whether the message existed.
func (db *DB) DeleteMessage(id string) (bool, error) {
	res, err := db.Exec(`DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AdvanceStatus moves messages sent by from that have been in status for at
// least age to status next. It returns the ids that changed.
func (db *DB) AdvanceStatus(from, status, next string, age time.Duration) ([]string, error) {
	now := time.Now().UnixMilli()
	cutoff := now - age.Milliseconds()

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.Query(`
		SELECT id FROM messages
		WHERE from_id = ? AND status = ? AND status_at <= ?
		ORDER BY status_at ASC`, from, status, cutoff)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, err := tx.Exec(`UPDATE messages SET status = ?, status_at = ? WHERE id = ?`, next, now, id); err != nil {
			return nil, err
		}
	}
	return ids, tx.Commit()
}
