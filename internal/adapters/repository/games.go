package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/okian/pmv/internal/domain/model"
	"github.com/okian/pmv/pkg/logger"
	"github.com/okian/pmv/pkg/metrics"
)

// StartNewGame opens a new session stamped with the current UTC time.
func (s *SQLiteStore) StartNewGame(ctx context.Context) (id int64, err error) {
	defer s.observe("start_game", time.Now(), &err)
	id, err = s.insertGame(ctx, s.db)
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "game started", logger.Int64("game_id", id))
	return id, nil
}

// CurrentGameID returns the id of the newest session.
func (s *SQLiteStore) CurrentGameID(ctx context.Context) (id int64, ok bool, err error) {
	defer s.observe("current_game", time.Now(), &err)
	return s.currentGameID(ctx, s.db)
}

// ListGames returns all sessions, newest first.
func (s *SQLiteStore) ListGames(ctx context.Context) (games []model.Game, err error) {
	defer s.observe("list_games", time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at FROM games ORDER BY id DESC`)
	if err != nil {
		return nil, unavailable("list games", err)
	}
	defer rows.Close()

	games = []model.Game{}
	for rows.Next() {
		var (
			g  model.Game
			ts string
		)
		if err := rows.Scan(&g.ID, &ts); err != nil {
			return nil, unavailable("scan game", err)
		}
		if g.CreatedAt, err = parseTime(ts); err != nil {
			return nil, unavailable("scan game", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list games", err)
	}
	return games, nil
}

func (s *SQLiteStore) insertGame(ctx context.Context, q querier) (int64, error) {
	res, err := q.ExecContext(ctx, `INSERT INTO games (created_at) VALUES (?)`, s.timestamp())
	if err != nil {
		return 0, unavailable("insert game", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, unavailable("game id", err)
	}
	metrics.RecordGameCreated()
	return id, nil
}

func (s *SQLiteStore) currentGameID(ctx context.Context, q querier) (int64, bool, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM games ORDER BY id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, unavailable("current game", err)
	}
	return id, true, nil
}

func (s *SQLiteStore) gameExists(ctx context.Context, q querier, id int64) (bool, error) {
	var found int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM games WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, unavailable("lookup game", err)
	}
	return true, nil
}
