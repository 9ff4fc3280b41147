package store

// ListConversations returns one entry per wa_id with its newest message,
// most recent conversation first. The name falls back from the contact to
// the newest message's sender name to the wa_id.
func (db *DB) ListConversations() ([]Conversation, error) {
	rows, err := db.Query(`
		SELECT m.wa_id,
			COALESCE(NULLIF(ct.name,''), NULLIF(m.name,''), m.wa_id) AS display_name,
			m.id, m.wa_id, m.from_id, m.name, m.body, m.status, m.timestamp, m.status_at
		FROM messages m
		LEFT JOIN contacts ct ON ct.wa_id = m.wa_id
		WHERE m.rowid = (
			SELECT m2.rowid FROM messages m2
			WHERE m2.wa_id = m.wa_id
			ORDER BY m2.timestamp DESC, m2.rowid DESC
			LIMIT 1
		)
		ORDER BY m.timestamp DESC, m.rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	convs := []Conversation{}
	for rows.Next() {
		var c Conversation
		m := &c.Last
		if err := rows.Scan(&c.WaID, &c.Name, &m.ID, &m.WaID, &m.From, &m.Name, &m.Body, &m.Status, &m.Timestamp, &m.StatusAt); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}
