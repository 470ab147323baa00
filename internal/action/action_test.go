package action

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bogus 未被 Dispatcher 识别的操作
type bogus struct{}

func (bogus) Name() string { return "bogus" }
func (bogus) sealed()      {}

func recordingDispatcher(calls *[]string) *Dispatcher {
	return &Dispatcher{
		Logout:    func(context.Context) error { *calls = append(*calls, "logout"); return nil },
		ResetGame: func(context.Context) error { *calls = append(*calls, "reset"); return nil },
		DeleteGame: func(_ context.Context, id string) error {
			*calls = append(*calls, "game:"+id)
			return nil
		},
		DeleteRule: func(_ context.Context, id string) error {
			*calls = append(*calls, "rule:"+id)
			return nil
		},
		ClearAllData: func(context.Context) error { *calls = append(*calls, "clear"); return nil },
	}
}

func TestDispatch_RoutesByType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action Action
		want   string
	}{
		{Logout{}, "logout"},
		{ResetGame{}, "reset"},
		{DeleteGame{GameID: "g1"}, "game:g1"},
		{DeleteRule{RuleID: "r1"}, "rule:r1"},
		{ClearAllData{}, "clear"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.action.Name(), func(t *testing.T) {
			t.Parallel()
			var calls []string
			d := recordingDispatcher(&calls)

			require.NoError(t, d.Dispatch(context.Background(), tt.action))
			assert.Equal(t, []string{tt.want}, calls)
		})
	}
}

func TestDispatch_Unhandled(t *testing.T) {
	t.Parallel()
	d := &Dispatcher{}

	err := d.Dispatch(context.Background(), DeleteGame{GameID: "g1"})
	assert.ErrorIs(t, err, ErrUnhandled)
	assert.Contains(t, err.Error(), "delete_game")
}

func TestDispatch_Unknown(t *testing.T) {
	t.Parallel()
	var calls []string
	d := recordingDispatcher(&calls)

	assert.ErrorIs(t, d.Dispatch(context.Background(), bogus{}), ErrUnknown)
	assert.ErrorIs(t, d.Dispatch(context.Background(), nil), ErrUnknown)
	assert.Empty(t, calls)
}

func TestDispatch_WrapsHandlerError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	d := &Dispatcher{DeleteRule: func(context.Context, string) error { return boom }}

	err := d.Dispatch(context.Background(), DeleteRule{RuleID: "r1"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "delete_rule: boom", err.Error())
}

func TestRun_StopsAtFirstError(t *testing.T) {
	t.Parallel()
	var calls []string
	d := recordingDispatcher(&calls)
	d.DeleteGame = func(context.Context, string) error { return errors.New("offline") }

	c := Confirmation{Actions: []Action{ResetGame{}, DeleteGame{GameID: "g"}, ClearAllData{}}}
	err := d.Run(context.Background(), c)

	assert.Error(t, err)
	assert.Equal(t, []string{"reset"}, calls)
}

func TestConfirmations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		c      Confirmation
		action Action
		danger bool
	}{
		{"logout", ConfirmLogout(), Logout{}, false},
		{"reset", ConfirmResetGame(), ResetGame{}, true},
		{"delete game", ConfirmDeleteGame("g1", "Friday"), DeleteGame{GameID: "g1"}, true},
		{"delete rule", ConfirmDeleteRule("r1", "Race"), DeleteRule{RuleID: "r1"}, true},
		{"clear", ConfirmClearAllData(), ClearAllData{}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.NotEmpty(t, tt.c.Title)
			assert.NotEmpty(t, tt.c.ConfirmLabel)
			assert.Equal(t, tt.danger, tt.c.Danger)
			assert.Equal(t, []Action{tt.action}, tt.c.Actions)
		})
	}

	assert.Contains(t, ConfirmDeleteGame("g1", "Friday").Message, "Friday")
}
