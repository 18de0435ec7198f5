package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pickledire/feign-server-go/internal/catalog"
	"github.com/pickledire/feign-server-go/internal/game"
	"github.com/pickledire/feign-server-go/internal/session"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		want    game.PlayerAction
		quit    bool
		wantErr bool
	}{
		{line: "end", want: game.EndPhase{}},
		{line: "creature 4", want: game.PlayCreature{CardID: 4}},
		{line: "FEIGN 14", want: game.PlayFeign{CardID: 14}},
		{line: "effect 22", want: game.PlayEffect{CardID: 22}},
		{line: "attack 0", want: game.Attack{CreatureIndex: 0}},
		{line: "reveal 1", want: game.RevealFeign{FeignIndex: 1}},
		{line: "state"},
		{line: "quit", quit: true},
		{line: "attack", wantErr: true},
		{line: "attack one", wantErr: true},
		{line: "creature 1 2", wantErr: true},
		{line: "cast 3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			action, quit, err := parseCommand(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, action)
			assert.Equal(t, tt.quit, quit)
		})
	}
}

func TestRunPlayQuit(t *testing.T) {
	var out bytes.Buffer
	err := runPlay(context.Background(), strings.NewReader("state\ncast 1\nattack 0\nquit\n"), &out, playOptions{
		player1: "Alice",
		player2: "Bob",
		seed:    5,
		catalog: catalog.MustDefault(),
		logger:  zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Game started!")
	assert.Contains(t, text, "Alice's hand:")
	assert.Contains(t, text, `unknown command "cast"`)
	assert.Contains(t, text, "! ")
}

func TestRunPlayToVictory(t *testing.T) {
	var b strings.Builder
	b.WriteString("cards:\n")
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "  - {id: %d, name: Giant %d, type: Creature, color: Cinder, cost: 0, attack: 5, defense: 1}\n", i, i)
	}
	giants, err := catalog.Parse([]byte(b.String()))
	require.NoError(t, err)

	rules := game.DefaultConfig()
	rules.StartingLife = 1

	out := runScript(t, giants, rules)
	assert.Contains(t, out, "Game over: Alice wins!")
}

func runScript(t *testing.T, c *catalog.Catalog, rules game.Config) string {
	t.Helper()
	cards := c.Cards()
	var script strings.Builder
	script.WriteString("end\n")
	// Every card in the pool is a giant, so any id in hand can be played.
	for _, card := range cards {
		fmt.Fprintf(&script, "creature %d\n", card.ID)
	}
	script.WriteString("end\nattack 0\n")

	var out bytes.Buffer
	err := runPlay(context.Background(), strings.NewReader(script.String()), &out, playOptions{
		player1: "Alice",
		player2: "Bob",
		seed:    9,
		rules:   &rules,
		catalog: c,
		logger:  zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return out.String()
}

func TestReportGameOverPropagatesErrors(t *testing.T) {
	manager, err := session.NewManager(session.Options{
		Rules:   game.DefaultConfig(),
		Catalog: catalog.MustDefault(),
		Logger:  zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	var out bytes.Buffer
	over, err := reportGameOver(&out, manager, game.GameState{})
	assert.ErrorIs(t, err, session.ErrNoActiveGame)
	assert.False(t, over)
	assert.Empty(t, out.String())

	state, err := manager.CreateGame(context.Background(), "Alice", "Bob")
	require.NoError(t, err)
	over, err = reportGameOver(&out, manager, state)
	require.NoError(t, err)
	assert.False(t, over)
}
