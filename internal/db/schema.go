package db

// schemaSQL is the authoritative schema. Tests load it through
// GetSchemaSQL() so test databases cannot drift from production.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS tasks (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT,
    due_at      TIMESTAMP NOT NULL,
    targets     TEXT NOT NULL,              -- JSON array of target IDs
    channel_id  TEXT NOT NULL,
    message_id  TEXT NOT NULL,
    permalink   TEXT,
    created_at  TIMESTAMP NOT NULL,
    expires_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_expires_at ON tasks(expires_at);

CREATE TABLE IF NOT EXISTS triggers (
    name          TEXT PRIMARY KEY,
    task_id       TEXT NOT NULL,
    handler       TEXT NOT NULL,
    fire_at       TIMESTAMP,                -- one-shot fire instant
    every_seconds INTEGER NOT NULL DEFAULT 0,
    window_start  TIMESTAMP,
    window_end    TIMESTAMP,
    timezone      TEXT,
    payload       TEXT NOT NULL,            -- JSON trigger payload
    state         TEXT NOT NULL DEFAULT 'scheduled',
    last_fired_at TIMESTAMP,
    updated_at    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_triggers_state ON triggers(state, fire_at);
`

// GetSchemaSQL returns the full schema DDL.
func GetSchemaSQL() string {
	return schemaSQL
}
