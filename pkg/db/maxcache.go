// Package db persists the results of the exhaustive attC re-search so
// repeated runs over the same replicon skip the slow cmsearch --max pass.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yumyai/intfinder/pkg/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS max_runs (
	replicon_id TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS max_hits (
	replicon_id TEXT NOT NULL,
	idx         INTEGER NOT NULL,
	accession   TEXT NOT NULL,
	model       TEXT NOT NULL,
	model_start INTEGER NOT NULL,
	model_end   INTEGER NOT NULL,
	pos_beg     INTEGER NOT NULL,
	pos_end     INTEGER NOT NULL,
	strand      TEXT NOT NULL,
	evalue      REAL NOT NULL,
	PRIMARY KEY (replicon_id, idx)
);
`

// MaxCache stores one deduplicated max-search hit table per replicon in a
// sqlite database.
type MaxCache struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*MaxCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open max cache %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init max cache schema: %w", err)
	}
	return &MaxCache{db: db}, nil
}

func (c *MaxCache) Close() error { return c.db.Close() }

// Load returns the cached hit table for a replicon. The boolean reports
// whether a run was recorded at all: an empty table from a completed run is
// distinct from a replicon never searched.
func (c *MaxCache) Load(repliconID string) (model.HitTable, bool, error) {
	ctx := context.TODO()

	var id string
	err := c.db.QueryRowContext(ctx, `SELECT replicon_id FROM max_runs WHERE replicon_id = ?`, repliconID).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query max_runs: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT accession, model, model_start, model_end, pos_beg, pos_end, strand, evalue
		FROM max_hits WHERE replicon_id = ? ORDER BY idx`, repliconID)
	if err != nil {
		return nil, false, fmt.Errorf("query max_hits: %w", err)
	}
	defer rows.Close()

	hits := model.HitTable{}
	for rows.Next() {
		var h model.AttcHit
		var strand string
		if err := rows.Scan(&h.Accession, &h.Model, &h.ModelStart, &h.ModelEnd,
			&h.PosBeg, &h.PosEnd, &strand, &h.Evalue); err != nil {
			return nil, false, fmt.Errorf("scan max_hits row: %w", err)
		}
		h.Strand = model.Strand(strand)
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate max_hits: %w", err)
	}
	return hits, true, nil
}

// Store records the hit table of a completed max search, replacing any
// previous record for the replicon.
func (c *MaxCache) Store(repliconID string, hits model.HitTable) error {
	ctx := context.TODO()
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin max cache tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM max_hits WHERE replicon_id = ?`, repliconID); err != nil {
		return fmt.Errorf("clear max_hits: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO max_runs (replicon_id) VALUES (?)`, repliconID); err != nil {
		return fmt.Errorf("record max run: %w", err)
	}

	stm, err := tx.PrepareContext(ctx, `
		INSERT INTO max_hits (replicon_id, idx, accession, model, model_start, model_end,
			pos_beg, pos_end, strand, evalue)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare max_hits insert: %w", err)
	}
	defer stm.Close()

	for i, h := range hits {
		if _, err := stm.ExecContext(ctx, repliconID, i, h.Accession, h.Model,
			h.ModelStart, h.ModelEnd, h.PosBeg, h.PosEnd, string(h.Strand), h.Evalue); err != nil {
			return fmt.Errorf("insert max hit %d: %w", i, err)
		}
	}
	return tx.Commit()
}
