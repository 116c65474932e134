package database

import "time"

// Report is a posted paste kept for history.
type Report struct {
	ID       int64
	SaveName string
	Board    string
	Thread   int
	Body     string
	PostedAt time.Time
}

// AddReport records a paste that was posted to a thread.
func (db *DB) AddReport(saveName, board string, thread int, body string) error {
	_, err := db.conn.Exec(`
		INSERT INTO reports (save_name, board, thread, body, posted_at)
		VALUES (?, ?, ?, ?, ?)
	`, saveName, board, thread, body, time.Now())
	return err
}

// GetReports retrieves the latest reports of a save, newest first.
func (db *DB) GetReports(saveName string, limit int) ([]*Report, error) {
	rows, err := db.conn.Query(`
		SELECT id, save_name, board, thread, body, posted_at
		FROM reports
		WHERE save_name = ?
		ORDER BY id DESC
		LIMIT ?
	`, saveName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*Report
	for rows.Next() {
		r := &Report{}
		if err := rows.Scan(&r.ID, &r.SaveName, &r.Board, &r.Thread, &r.Body, &r.PostedAt); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
