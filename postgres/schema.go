package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS procedures (
    id            BIGSERIAL PRIMARY KEY,
    uuid          UUID NOT NULL,
    title         TEXT NOT NULL DEFAULT '',
    author        TEXT NOT NULL DEFAULT '',
    version       INTEGER NOT NULL DEFAULT 1,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_modified TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (uuid, version)
);

CREATE TABLE IF NOT EXISTS concepts (
    id            BIGSERIAL PRIMARY KEY,
    uuid          UUID NOT NULL UNIQUE,
    name          TEXT NOT NULL,
    display_name  TEXT NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    data_type     TEXT NOT NULL DEFAULT '',
    mime_type     TEXT NOT NULL DEFAULT '',
    value_constraint TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_modified TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS pages (
    id            BIGSERIAL PRIMARY KEY,
    procedure_id  BIGINT NOT NULL REFERENCES procedures(id) ON DELETE CASCADE,
    display_index INTEGER NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_modified TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS elements (
    id            BIGSERIAL PRIMARY KEY,
    page_id       BIGINT NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
    display_index INTEGER NOT NULL,
    element_type  TEXT NOT NULL DEFAULT '',
    question      TEXT NOT NULL DEFAULT '',
    answer        TEXT NOT NULL DEFAULT '',
    choices       TEXT NOT NULL DEFAULT '',
    required      BOOLEAN NOT NULL DEFAULT FALSE,
    image         TEXT NOT NULL DEFAULT '',
    audio         TEXT NOT NULL DEFAULT '',
    action        TEXT NOT NULL DEFAULT '',
    mime_type     TEXT NOT NULL DEFAULT '',
    concept_id    BIGINT REFERENCES concepts(id) ON DELETE SET NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_modified TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS show_ifs (
    id            BIGSERIAL PRIMARY KEY,
    page_id       BIGINT NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
    conditions    JSONB NOT NULL DEFAULT 'null',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_modified TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_pages_procedure_id ON pages(procedure_id);
CREATE INDEX IF NOT EXISTS idx_elements_page_id   ON elements(page_id);
CREATE INDEX IF NOT EXISTS idx_show_ifs_page_id   ON show_ifs(page_id);
CREATE INDEX IF NOT EXISTS idx_elements_concept_id ON elements(concept_id);
`

// CreateSchema creates the procedure tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the procedure tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS show_ifs, elements, pages, procedures, concepts CASCADE;`)
	return err
}
