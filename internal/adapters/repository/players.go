package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/okian/pmv/internal/domain/model"
	"github.com/okian/pmv/pkg/logger"
	"github.com/okian/pmv/pkg/metrics"
)

// AddPlayer registers name and returns its id. Registering an existing name
// returns the existing id.
func (s *SQLiteStore) AddPlayer(ctx context.Context, name string) (id int64, err error) {
	name, err = model.NormalizePlayerName(name)
	if err != nil {
		return 0, err
	}
	defer s.observe("add_player", time.Now(), &err)

	id, created, err := s.resolveOrCreatePlayer(ctx, s.db, name)
	if err != nil {
		return 0, err
	}
	if created {
		s.logger.Debug(ctx, "player created", logger.String("name", name), logger.Int64("id", id))
	}
	return id, nil
}

// ListPlayers returns every registered name, ignoring case when ordering.
func (s *SQLiteStore) ListPlayers(ctx context.Context) (names []string, err error) {
	defer s.observe("list_players", time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM players ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, unavailable("list players", err)
	}
	defer rows.Close()

	names = []string{}
	for rows.Next() {
		var name sql.NullString
		if err := rows.Scan(&name); err != nil {
			return nil, unavailable("scan player", err)
		}
		names = append(names, name.String)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list players", err)
	}
	return names, nil
}

// resolveOrCreatePlayer inserts name, falling back to the stored id when the
// unique constraint rejects it. created reports whether a row was added.
func (s *SQLiteStore) resolveOrCreatePlayer(ctx context.Context, q querier, name string) (id int64, created bool, err error) {
	res, err := q.ExecContext(ctx, `INSERT INTO players (name, created_at) VALUES (?, ?)`, name, s.timestamp())
	switch {
	case err == nil:
		id, err = res.LastInsertId()
		if err != nil {
			return 0, false, unavailable("player id", err)
		}
		metrics.RecordPlayerCreated()
		return id, true, nil
	case isUniqueViolation(err):
		if err := q.QueryRowContext(ctx, `SELECT id FROM players WHERE name = ?`, name).Scan(&id); err != nil {
			return 0, false, unavailable("lookup player", err)
		}
		return id, false, nil
	default:
		return 0, false, unavailable("insert player", err)
	}
}
