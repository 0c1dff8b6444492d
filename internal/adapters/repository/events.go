package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/okian/pmv/internal/domain/model"
	"github.com/okian/pmv/pkg/logger"
	"github.com/okian/pmv/pkg/metrics"
)

// InsertEvent appends one event.
//
// The player is registered if unknown and, when gameID is nil, the newest
// session is used or created. All of it commits or rolls back together, so a
// rejected event never leaves an implicit player or session behind.
func (s *SQLiteStore) InsertEvent(ctx context.Context, player string, action model.Action, gameID *int64) (ev model.Event, err error) {
	name, err := model.NormalizePlayerName(player)
	if err != nil {
		return model.Event{}, err
	}
	if !action.Valid() {
		return model.Event{}, fmt.Errorf("%w: %q", model.ErrInvalidAction, string(action))
	}
	defer s.observe("insert_event", time.Now(), &err)

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, _, err := s.resolveOrCreatePlayer(ctx, tx, name); err != nil {
			return err
		}

		gid, err := s.resolveGame(ctx, tx, gameID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO events (game_id, player, action, created_at) VALUES (?, ?, ?, ?)`,
			gid, name, string(action), formatTime(now),
		)
		if err != nil {
			return unavailable("insert event", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return unavailable("event id", err)
		}
		ev = model.Event{ID: id, GameID: &gid, Player: name, Action: action, CreatedAt: now.Truncate(time.Microsecond)}
		return nil
	})
	if err != nil {
		return model.Event{}, err
	}

	metrics.RecordEventLogged(string(action))
	s.logger.Debug(ctx, "event logged",
		logger.Int64("event_id", ev.ID),
		logger.Int64("game_id", *ev.GameID),
		logger.String("player", ev.Player),
		logger.String("action", string(ev.Action)),
	)
	return ev, nil
}

// resolveGame picks the session an event belongs to. An explicit id must
// exist; no id means the newest session, created when there is none.
func (s *SQLiteStore) resolveGame(ctx context.Context, q querier, gameID *int64) (int64, error) {
	if gameID != nil {
		ok, err := s.gameExists(ctx, q, *gameID)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("%w: %d", ErrGameNotFound, *gameID)
		}
		return *gameID, nil
	}

	id, ok, err := s.currentGameID(ctx, q)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}
	id, err = s.insertGame(ctx, q)
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "no game session yet; started one for incoming event", logger.Int64("game_id", id))
	return id, nil
}

// ResolveFilter turns the Latest selector into the newest game id. With no
// sessions at all the game restriction is dropped.
func (s *SQLiteStore) ResolveFilter(ctx context.Context, f model.EventFilter) (model.EventFilter, error) {
	if !f.Latest {
		return f, nil
	}
	f.Latest = false
	id, ok, err := s.currentGameID(ctx, s.db)
	if err != nil {
		return model.EventFilter{}, err
	}
	if ok {
		f.GameIDs = []int64{id}
	} else {
		f.GameIDs = nil
	}
	return f, nil
}

// QueryEvents returns the events matching f ordered by id.
func (s *SQLiteStore) QueryEvents(ctx context.Context, f model.EventFilter) (events []model.Event, err error) {
	defer s.observe("query_events", time.Now(), &err)

	f, err = s.ResolveFilter(ctx, f)
	if err != nil {
		return nil, err
	}

	query, args := buildEventQuery(f)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("query events", err)
	}
	defer rows.Close()

	events = []model.Event{}
	for rows.Next() {
		var (
			e      model.Event
			gameID sql.NullInt64
			player sql.NullString
			action sql.NullString
			ts     sql.NullString
		)
		if err := rows.Scan(&e.ID, &gameID, &player, &action, &ts); err != nil {
			return nil, unavailable("scan event", err)
		}
		if gameID.Valid {
			gid := gameID.Int64
			e.GameID = &gid
		}
		e.Player = player.String
		e.Action = model.Action(action.String)
		if ts.Valid {
			if e.CreatedAt, err = parseTime(ts.String); err != nil {
				return nil, unavailable("scan event", err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("query events", err)
	}
	return events, nil
}

// buildEventQuery renders f as a conjunctive WHERE clause.
func buildEventQuery(f model.EventFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.HasGames() {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.GameIDs)), ",")
		clauses = append(clauses, "game_id IN ("+placeholders+")")
		for _, id := range f.GameIDs {
			args = append(args, id)
		}
	}
	if f.Start != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, formatTime(*f.Start))
	}
	if f.End != nil {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, formatTime(*f.End))
	}

	query := "SELECT id, game_id, player, action, created_at FROM events"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	return query + " ORDER BY id", args
}
