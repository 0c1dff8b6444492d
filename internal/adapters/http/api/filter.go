package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/pmv/internal/domain/model"
)

const dateLayout = "2006-01-02"

// parseFilter reads game_id, latest, start and end from the query string.
// game_id may repeat or hold a comma-separated list.
func parseFilter(r *http.Request) (model.EventFilter, error) {
	q := r.URL.Query()
	var f model.EventFilter

	for _, raw := range q["game_id"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return model.EventFilter{}, fmt.Errorf("%w: game_id %q is not an integer", ErrBadRequest, part)
			}
			f.GameIDs = append(f.GameIDs, id)
		}
	}

	if v := q.Get("latest"); v != "" {
		latest, err := strconv.ParseBool(v)
		if err != nil {
			return model.EventFilter{}, fmt.Errorf("%w: latest must be a boolean", ErrBadRequest)
		}
		f.Latest = latest
	}

	var err error
	if f.Start, err = parseBound(q.Get("start"), false); err != nil {
		return model.EventFilter{}, fmt.Errorf("%w: start: %w", ErrBadRequest, err)
	}
	if f.End, err = parseBound(q.Get("end"), true); err != nil {
		return model.EventFilter{}, fmt.Errorf("%w: end: %w", ErrBadRequest, err)
	}
	if f.Start != nil && f.End != nil && f.End.Before(*f.Start) {
		return model.EventFilter{}, fmt.Errorf("%w: end is before start", ErrBadRequest)
	}
	return f, nil
}

// parseBound accepts RFC3339 or a bare date. A bare end date covers the whole
// day, so it resolves to the last microsecond of that day in UTC.
func parseBound(v string, end bool) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, fmt.Errorf("%q is neither RFC3339 nor YYYY-MM-DD", v)
	}
	if end {
		t = t.AddDate(0, 0, 1).Add(-time.Microsecond)
	}
	return &t, nil
}
