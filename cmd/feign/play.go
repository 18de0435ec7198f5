package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pickledire/feign-server-go/internal/catalog"
	"github.com/pickledire/feign-server-go/internal/game"
	"github.com/pickledire/feign-server-go/internal/session"
)

const playHelp = `  creature <card id>   play a creature from hand
  feign <card id>      place a feign face down
  effect <card id>     play a global effect
  attack <column>      attack with the creature in column (0-based)
  reveal <column>      reveal your own feign in column
  end                  end the current phase
  state | log | help | quit`

var (
	player1Name string
	player2Name string
	seed        uint64
	recordDir   string
)

// playCmd runs a hot-seat game on the terminal
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a hot-seat game in the terminal",
	Long:  "Play a two-player game on one terminal. Commands act for the player\nwhose turn it is:\n\n" + playHelp,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCatalog()
		if err != nil {
			return err
		}
		logger := newLogger()
		defer func() { _ = logger.Sync() }()

		return runPlay(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), playOptions{
			player1:   player1Name,
			player2:   player2Name,
			seed:      seed,
			replayDir: recordDir,
			catalog:   c,
			logger:    logger,
		})
	},
}

func init() {
	playCmd.Flags().StringVar(&player1Name, "p1", "Player 1", "name of player 1")
	playCmd.Flags().StringVar(&player2Name, "p2", "Player 2", "name of player 2")
	playCmd.Flags().Uint64Var(&seed, "seed", 0, "deck shuffle seed (0 picks one at random)")
	playCmd.Flags().StringVar(&recordDir, "replay-dir", "", "save a replay of the game into this directory")
	rootCmd.AddCommand(playCmd)
}

type playOptions struct {
	player1   string
	player2   string
	seed      uint64
	replayDir string
	rules     *game.Config
	catalog   *catalog.Catalog
	logger    *zap.Logger
}

func runPlay(ctx context.Context, in io.Reader, out io.Writer, opts playOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rules := game.DefaultConfig()
	if opts.rules != nil {
		rules = *opts.rules
	}
	var recorder *game.ReplayRecorder
	if opts.replayDir != "" {
		if err := os.MkdirAll(opts.replayDir, 0o755); err != nil {
			return fmt.Errorf("create replay directory: %w", err)
		}
		recorder = game.NewReplayRecorder(opts.logger, opts.replayDir)
	}
	manager, err := session.NewManager(session.Options{
		Rules:    rules,
		Seed:     opts.seed,
		Catalog:  opts.catalog,
		Recorder: recorder,
		Logger:   opts.logger,
	})
	if err != nil {
		return err
	}

	state, err := manager.CreateGame(ctx, opts.player1, opts.player2)
	if err != nil {
		return err
	}
	sessionID := manager.SessionID()
	defer func() {
		// Closing the session writes the replay of an unfinished game.
		_ = manager.ResetGame(context.WithoutCancel(ctx))
		if recorder != nil {
			fmt.Fprintf(out, "Replay saved: %s\n", sessionID)
		}
	}()
	logCursor := 0
	logCursor = printNewLog(out, state.GameLog, logCursor)
	printState(out, state)

	scanner := bufio.NewScanner(in)
	for {
		current := state.Current()
		fmt.Fprintf(out, "%s (%s)> ", current.Name, state.Phase)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		action, done, err := parseCommand(line)
		switch {
		case done:
			return nil
		case err != nil:
			fmt.Fprintln(out, err)
			continue
		case action == nil:
			switch strings.ToLower(line) {
			case "state":
				printState(out, state)
			case "log":
				for _, entry := range state.GameLog {
					fmt.Fprintln(out, "  "+entry)
				}
			default:
				fmt.Fprintln(out, playHelp)
			}
			continue
		}

		result, err := manager.ProcessAction(ctx, current.ID, action)
		if err != nil {
			return err
		}
		if !result.Success {
			fmt.Fprintf(out, "! %s\n", result.Message)
			continue
		}
		state = *result.NewState
		logCursor = printNewLog(out, state.GameLog, logCursor)
		fmt.Fprintln(out, result.Message)

		over, err := reportGameOver(out, manager, state)
		if err != nil || over {
			return err
		}
	}
}

// reportGameOver prints the result once the game has ended.
func reportGameOver(out io.Writer, manager *session.Manager, state game.GameState) (bool, error) {
	outcome, err := manager.CheckGameOver()
	if err != nil {
		return false, fmt.Errorf("check game over: %w", err)
	}
	if !outcome.Over {
		return false, nil
	}
	printState(out, state)
	if outcome.Winner == game.NoWinner {
		fmt.Fprintln(out, "Game over: both players fell. It's a draw.")
	} else {
		fmt.Fprintf(out, "Game over: %s wins!\n", state.PlayerByID(outcome.Winner).Name)
	}
	return true, nil
}

// parseCommand turns one input line into an action. A nil action with a nil
// error is a local command such as "state".
func parseCommand(line string) (action game.PlayerAction, quit bool, err error) {
	fields := strings.Fields(line)
	verb := strings.ToLower(fields[0])

	arg := func() (int, error) {
		if len(fields) != 2 {
			return 0, fmt.Errorf("usage: %s <number>", verb)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", fields[1])
		}
		return n, nil
	}

	switch verb {
	case "quit", "exit":
		return nil, true, nil
	case "state", "log", "help", "?":
		return nil, false, nil
	case "end":
		return game.EndPhase{}, false, nil
	case "creature", "feign", "effect", "attack", "reveal":
		n, err := arg()
		if err != nil {
			return nil, false, err
		}
		switch verb {
		case "creature":
			return game.PlayCreature{CardID: n}, false, nil
		case "feign":
			return game.PlayFeign{CardID: n}, false, nil
		case "effect":
			return game.PlayEffect{CardID: n}, false, nil
		case "attack":
			return game.Attack{CreatureIndex: n}, false, nil
		default:
			return game.RevealFeign{FeignIndex: n}, false, nil
		}
	default:
		return nil, false, fmt.Errorf("unknown command %q (try help)", verb)
	}
}

func printNewLog(out io.Writer, log []string, cursor int) int {
	for _, entry := range log[cursor:] {
		fmt.Fprintln(out, "  "+entry)
	}
	return len(log)
}

func printState(out io.Writer, state game.GameState) {
	fmt.Fprintf(out, "\nTurn %d, %s phase, %s to act\n", state.TurnNumber, state.Phase, state.Current().Name)
	if effect := state.GlobalEffect; effect != nil {
		fmt.Fprintf(out, "Global effect: %s (%d turns left)\n", effect.Card.Name, effect.RemainingDuration)
	}
	for _, p := range []game.Player{state.Player1, state.Player2} {
		fmt.Fprintf(out, "%s: life %d, mana %d, deck %d\n", p.Name, p.Life, p.Mana, len(p.Deck))
		for i, c := range p.Board.Creatures {
			tapped := ""
			if c.IsTapped {
				tapped = " (tapped)"
			}
			fmt.Fprintf(out, "  [%d] %s %d/%d%s\n", i, c.Card.Name, c.CurrentAttack, c.CurrentDefense, tapped)
		}
		for i, f := range p.Board.Feigns {
			name := "face-down feign"
			if f.IsRevealed || p.ID == state.CurrentPlayer {
				name = f.Card.Name
			}
			fmt.Fprintf(out, "  feign [%d] %s\n", i, name)
		}
	}

	current := state.Current()
	fmt.Fprintf(out, "%s's hand:\n", current.Name)
	for _, card := range current.Hand {
		fmt.Fprintf(out, "  %d: %s (%s, %d mana) %s\n", card.ID, card.Name, card.CardType, card.ManaCost, cardStats(card))
	}
	fmt.Fprintln(out)
}
