package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/point-calculator/internal/auth"
	"github.com/palemoky/point-calculator/internal/protocol"
	"github.com/palemoky/point-calculator/internal/server/storage"
	"github.com/palemoky/point-calculator/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newAPIRouter 注册路由，private 组直接以 X-User 头作为登录用户
func newAPIRouter(deps APIDeps) *gin.Engine {
	r := gin.New()
	public := r.Group("/api")
	private := r.Group("/api", func(c *gin.Context) {
		c.Set(auth.UserIDKey, c.GetHeader("X-User"))
	})
	NewAPI(deps).Register(public, private)
	return r
}

func get(r *gin.Engine, path, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != "" {
		req.Header.Set("X-User", userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAPI_TopPlayersLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query string
		want  int
	}{
		{"", defaultTopLimit},
		{"?limit=5", 5},
		{"?limit=1000", maxListLimit},
		{"?limit=-3", defaultTopLimit},
		{"?limit=abc", defaultTopLimit},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			lb := new(testutil.MockLeaderboard)
			lb.On("Top", mock.Anything, tt.want).Return([]storage.LeaderboardEntry{}, nil).Once()
			r := newAPIRouter(APIDeps{Leaderboard: lb})

			w := get(r, "/api/leaderboard"+tt.query, "")
			assert.Equal(t, http.StatusOK, w.Code)
			lb.AssertExpectations(t)
		})
	}
}

func TestAPI_PlayerRank(t *testing.T) {
	t.Parallel()
	lb := new(testutil.MockLeaderboard)
	lb.On("Rank", mock.Anything, "Alice").Return(int64(2), nil)
	lb.On("Rank", mock.Anything, "Nobody").Return(int64(-1), nil)
	lb.On("Rank", mock.Anything, "Broken").Return(int64(-1), errors.New("redis down"))
	r := newAPIRouter(APIDeps{Leaderboard: lb})

	w := get(r, "/api/leaderboard/Alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Player string `json:"player"`
		Rank   int64  `json:"rank"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Alice", body.Player)
	assert.Equal(t, int64(2), body.Rank)

	w = get(r, "/api/leaderboard/Nobody", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var errBody map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errBody))
	assert.EqualValues(t, protocol.ErrCodePlayerNotFound, errBody["code"])

	w = get(r, "/api/leaderboard/Broken", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAPI_ListArchive(t *testing.T) {
	t.Parallel()
	archive := new(testutil.MockArchiver)
	rows := []storage.ArchivedGame{{GameID: "g1", Owner: "u1", Winner: "Alice"}}
	archive.On("ListByOwner", mock.Anything, "u1", defaultArchiveLimit).Return(rows, nil).Once()
	archive.On("ListByOwner", mock.Anything, "u1", maxListLimit).Return([]storage.ArchivedGame{}, nil).Once()
	r := newAPIRouter(APIDeps{Archive: archive})

	w := get(r, "/api/archive", "u1")
	require.Equal(t, http.StatusOK, w.Code)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "g1", got[0]["game_id"])
	assert.Equal(t, "Alice", got[0]["winner"])
	assert.NotContains(t, got[0], "Snapshot")

	w = get(r, "/api/archive?limit=500", "u1")
	assert.Equal(t, http.StatusOK, w.Code)
	archive.AssertExpectations(t)
}

func TestAPI_ListArchiveDisabled(t *testing.T) {
	t.Parallel()
	r := newAPIRouter(APIDeps{})

	w := get(r, "/api/archive", "u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}
