package api

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		games   []int64
		latest  bool
		start   string
		end     string
		wantErr bool
	}{
		{name: "empty", query: ""},
		{name: "repeated ids", query: "game_id=1&game_id=3", games: []int64{1, 3}},
		{name: "comma list", query: "game_id=1,%202,,3", games: []int64{1, 2, 3}},
		{name: "latest", query: "latest=true", latest: true},
		{name: "date bounds", query: "start=2024-03-01&end=2024-03-01",
			start: "2024-03-01T00:00:00Z", end: "2024-03-01T23:59:59.999999Z"},
		{name: "rfc3339 bounds", query: "start=2024-03-01T10:00:00%2B02:00",
			start: "2024-03-01T08:00:00Z"},
		{name: "bad id", query: "game_id=x", wantErr: true},
		{name: "bad latest", query: "latest=maybe", wantErr: true},
		{name: "bad date", query: "start=03/01/2024", wantErr: true},
		{name: "end before start", query: "start=2024-03-02&end=2024-03-01", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := parseFilter(httptest.NewRequest("GET", "/events?"+tt.query, nil))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.query)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(f.GameIDs) != len(tt.games) {
				t.Fatalf("game ids = %v, want %v", f.GameIDs, tt.games)
			}
			for i := range tt.games {
				if f.GameIDs[i] != tt.games[i] {
					t.Fatalf("game ids = %v, want %v", f.GameIDs, tt.games)
				}
			}
			if f.Latest != tt.latest {
				t.Fatalf("latest = %v, want %v", f.Latest, tt.latest)
			}
			checkBound(t, "start", f.Start, tt.start)
			checkBound(t, "end", f.End, tt.end)
		})
	}
}

func checkBound(t *testing.T, name string, got *time.Time, want string) {
	t.Helper()
	if want == "" {
		if got != nil {
			t.Fatalf("%s = %v, want unset", name, got)
		}
		return
	}
	w, err := time.Parse(time.RFC3339Nano, want)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || !got.Equal(w) {
		t.Fatalf("%s = %v, want %v", name, got, w)
	}
}

func TestErrorClass(t *testing.T) {
	for status, want := range map[int]string{
		500: "server_error",
		503: "server_error",
		429: "rate_limit",
		404: "not_found",
		422: "conflict",
		400: "client_error",
	} {
		if got := errorClass(status); got != want {
			t.Errorf("errorClass(%d) = %q, want %q", status, got, want)
		}
	}
}
