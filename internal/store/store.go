// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuivocab/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed-width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	// ErrNotFound is returned when a set or word does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSetExists is returned when a set name is already taken.
	ErrSetExists = errors.New("a set with that name already exists")
)

// Store wraps SQLite access for word sets and training rounds.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS word_sets (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS words (
			id INTEGER PRIMARY KEY,
			set_id INTEGER NOT NULL,
			term TEXT NOT NULL,
			definition TEXT NOT NULL,
			UNIQUE (set_id, term),
			FOREIGN KEY (set_id) REFERENCES word_sets(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS rounds (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL,
			set_name TEXT NOT NULL,
			graded_at TEXT NOT NULL,
			elapsed_seconds INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			total INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS round_terms (
			round_id INTEGER NOT NULL,
			term TEXT NOT NULL,
			correct INTEGER NOT NULL,
			FOREIGN KEY (round_id) REFERENCES rounds(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_words_set_id ON words(set_id);`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_graded_at ON rounds(graded_at);`,
		`CREATE INDEX IF NOT EXISTS idx_round_terms_round_id ON round_terms(round_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ListWordSets returns the catalog keyed by set name.
func (s *Store) ListWordSets(ctx context.Context) (map[string]model.SetInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM word_sets`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[string]model.SetInfo{}
	for rows.Next() {
		var name string
		var info model.SetInfo
		if err := rows.Scan(&info.ID, &name, &info.Description); err != nil {
			return nil, err
		}
		result[name] = info
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LoadWordPairs returns the pairs of a set in insertion order.
func (s *Store) LoadWordPairs(ctx context.Context, setID int64) ([]model.WordPair, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT term, definition FROM words WHERE set_id = ? ORDER BY id ASC`, setID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var pairs []model.WordPair
	for rows.Next() {
		var p model.WordPair
		if err := rows.Scan(&p.Term, &p.Definition); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// LoadWordSet resolves a set by name and snapshots its pairs.
func (s *Store) LoadWordSet(ctx context.Context, name string) (*model.WordSet, error) {
	set := &model.WordSet{Name: name}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, description FROM word_sets WHERE name = ?`, name).Scan(&set.ID, &set.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("set %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	pairs, err := s.LoadWordPairs(ctx, set.ID)
	if err != nil {
		return nil, err
	}
	set.Pairs = pairs
	return set, nil
}

// CreateSet stores a new set with its pairs.
func (s *Store) CreateSet(ctx context.Context, name, description string, pairs []model.WordPair) (id int64, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("set name must not be empty")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	var exists int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM word_sets WHERE name = ?`, name).Scan(&exists); err != nil {
		return 0, err
	}
	if exists > 0 {
		err = fmt.Errorf("set %q: %w", name, ErrSetExists)
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO word_sets (name, description) VALUES (?, ?)`, name, description)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err = insertWords(ctx, tx, id, pairs); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// RenameSet changes the name of a set.
func (s *Store) RenameSet(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("set name must not be empty")
	}
	sets, err := s.ListWordSets(ctx)
	if err != nil {
		return err
	}
	if _, ok := sets[oldName]; !ok {
		return fmt.Errorf("set %q: %w", oldName, ErrNotFound)
	}
	if _, ok := sets[newName]; ok && newName != oldName {
		return fmt.Errorf("set %q: %w", newName, ErrSetExists)
	}
	_, err = s.db.ExecContext(ctx, `UPDATE word_sets SET name = ? WHERE name = ?`, newName, oldName)
	return err
}

// DescribeSet replaces the description of a set.
func (s *Store) DescribeSet(ctx context.Context, name, description string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE word_sets SET description = ? WHERE name = ?`, description, name)
	if err != nil {
		return err
	}
	return expectAffected(res, fmt.Sprintf("set %q", name))
}

// DeleteSet removes a set and all of its words.
func (s *Store) DeleteSet(ctx context.Context, name string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM words WHERE set_id IN (SELECT id FROM word_sets WHERE name = ?)`, name); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM word_sets WHERE name = ?`, name)
	if err != nil {
		return err
	}
	if err = expectAffected(res, fmt.Sprintf("set %q", name)); err != nil {
		return err
	}
	return tx.Commit()
}

// AddWord inserts a pair, replacing the definition when the term already exists.
func (s *Store) AddWord(ctx context.Context, setID int64, pair model.WordPair) error {
	pair = normalizePair(pair)
	if err := validatePair(pair); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO words (set_id, term, definition) VALUES (?, ?, ?)
		 ON CONFLICT (set_id, term) DO UPDATE SET definition = excluded.definition`,
		setID, pair.Term, pair.Definition)
	return err
}

// RemoveWord deletes a term from a set.
func (s *Store) RemoveWord(ctx context.Context, setID int64, term string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM words WHERE set_id = ? AND term = ?`, setID, strings.TrimSpace(term))
	if err != nil {
		return err
	}
	return expectAffected(res, fmt.Sprintf("word %q", term))
}

// ReplaceWords swaps the full word list of a set in one transaction.
func (s *Store) ReplaceWords(ctx context.Context, setID int64, pairs []model.WordPair) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM words WHERE set_id = ?`, setID); err != nil {
		return err
	}
	if err = insertWords(ctx, tx, setID, pairs); err != nil {
		return err
	}
	return tx.Commit()
}

func insertWords(ctx context.Context, tx *sql.Tx, setID int64, pairs []model.WordPair) error {
	if len(pairs) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO words (set_id, term, definition) VALUES (?, ?, ?)
		 ON CONFLICT (set_id, term) DO UPDATE SET definition = excluded.definition`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, p := range pairs {
		p = normalizePair(p)
		if err := validatePair(p); err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, setID, p.Term, p.Definition); err != nil {
			return err
		}
	}
	return nil
}

// normalizePair trims surrounding whitespace, which typed answers never carry.
func normalizePair(p model.WordPair) model.WordPair {
	return model.WordPair{Term: strings.TrimSpace(p.Term), Definition: strings.TrimSpace(p.Definition)}
}

func validatePair(p model.WordPair) error {
	if p.Term == "" || p.Definition == "" {
		return fmt.Errorf("both a word and a definition are required")
	}
	return nil
}

func expectAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

// InsertRound stores a graded batch and its per-term outcomes.
func (s *Store) InsertRound(ctx context.Context, round model.RoundResult) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO rounds (session_id, set_name, graded_at, elapsed_seconds, correct, total)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		round.SessionID,
		round.SetName,
		round.GradedAt.UTC().Format(timeLayout),
		round.ElapsedSeconds,
		round.Correct,
		round.Total,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(round.Terms) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO round_terms (round_id, term, correct) VALUES (?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, term := range round.Terms {
			correct := 0
			if term.Correct {
				correct = 1
			}
			if _, err = stmt.ExecContext(ctx, id, term.Term, correct); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRounds returns rounds filtered by stats config, oldest first.
func (s *Store) ListRounds(ctx context.Context, cfg model.StatsConfig) ([]model.RoundAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.SetName != "" {
		clauses = append(clauses, "set_name = ?")
		args = append(args, cfg.SetName)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "graded_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, session_id, set_name, graded_at, elapsed_seconds, correct, total
		FROM rounds
		WHERE %s
		ORDER BY graded_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var rounds []model.RoundAggregate
	for rows.Next() {
		var agg model.RoundAggregate
		var gradedAt string
		if err := rows.Scan(&agg.RoundID, &agg.SessionID, &agg.SetName, &gradedAt,
			&agg.ElapsedSeconds, &agg.Correct, &agg.Total); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, gradedAt)
		if err != nil {
			return nil, err
		}
		agg.GradedAt = parsed
		rounds = append(rounds, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rounds, nil
}

// ListTermAggregates aggregates term outcomes across rounds.
func (s *Store) ListTermAggregates(ctx context.Context, roundIDs []int64) ([]model.TermAggregate, error) {
	if len(roundIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(roundIDs))
	args := make([]any, len(roundIDs))
	for i, id := range roundIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT term, SUM(correct) AS correct, SUM(1 - correct) AS incorrect
		FROM round_terms
		WHERE round_id IN (%s)
		GROUP BY term`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.TermAggregate
	for rows.Next() {
		var agg model.TermAggregate
		if err := rows.Scan(&agg.Term, &agg.Correct, &agg.Incorrect); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
