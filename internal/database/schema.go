package database

const schema = `
CREATE TABLE anime (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	mal_id         INTEGER NOT NULL UNIQUE,
	title          TEXT NOT NULL,
	title_english  TEXT,
	synopsis       TEXT,
	episodes       INTEGER,
	score          REAL,
	scored_by      INTEGER,
	type           TEXT,
	status         TEXT,
	aired_from     TEXT,
	aired_to       TEXT,
	image_url      TEXT,
	rating         TEXT,
	anime_rank     INTEGER,
	popularity     INTEGER,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL,
	last_synced_at TEXT NOT NULL
);

CREATE INDEX idx_anime_title ON anime (title);
CREATE INDEX idx_anime_score ON anime (score);

CREATE TABLE genre (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	mal_genre_id INTEGER NOT NULL UNIQUE,
	name         TEXT NOT NULL,
	type         TEXT
);

CREATE TABLE anime_genre (
	anime_id INTEGER NOT NULL REFERENCES anime (id) ON DELETE CASCADE,
	genre_id INTEGER NOT NULL REFERENCES genre (id) ON DELETE CASCADE,
	PRIMARY KEY (anime_id, genre_id)
);

CREATE TABLE cache_entries (
	key        TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	expires_at TEXT NOT NULL
);

CREATE INDEX idx_cache_expires ON cache_entries (expires_at);
`

var migrations = []string{
	"",
}
