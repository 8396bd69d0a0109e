package artifacts

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create runs",
		SQL: `
			CREATE TABLE runs (
				id           TEXT PRIMARY KEY,
				session_id   TEXT NOT NULL,
				status       TEXT NOT NULL,
				image_count  INTEGER NOT NULL DEFAULT 0,
				proof_count  INTEGER NOT NULL DEFAULT 0,
				result_path  TEXT NOT NULL DEFAULT '',
				error        TEXT NOT NULL DEFAULT '',
				created_at   TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_runs_session ON runs (session_id);
			CREATE INDEX idx_runs_created ON runs (created_at);
		`,
	},
}
