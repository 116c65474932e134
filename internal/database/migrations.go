package database

type migration struct {
	id   int
	name string
	sql  string
}

var migrations = []migration{
	{
		id:   1,
		name: "initial_schema",
		sql: `
			-- Saves: one named game state each, zstd-compressed JSON
			CREATE TABLE saves (
				name TEXT PRIMARY KEY,
				state BLOB NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);

			-- Reports: every paste the bot managed to post
			CREATE TABLE reports (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				save_name TEXT NOT NULL,
				board TEXT NOT NULL,
				thread INTEGER NOT NULL,
				body TEXT NOT NULL,
				posted_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX idx_reports_save ON reports(save_name);
		`,
	},
}
