package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pickledire/feign-server-go/internal/game"
)

var (
	replayDir string
	replayAll bool
)

const replayHelp = `  n | <enter>    next frame
  p              previous frame
  s <count>      skip count frames (negative goes back)
  f <index>      jump to frame index
  q              quit`

// replayCmd steps through a saved replay
var replayCmd = &cobra.Command{
	Use:   "replay <session-id>",
	Short: "Step through a saved game replay",
	Long:  "Load a replay written by the server or by play --replay-dir and step through it:\n\n" + replayHelp,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		defer func() { _ = logger.Sync() }()

		replay, err := game.NewReplayRecorder(logger, replayDir).LoadReplay(args[0])
		if err != nil {
			return err
		}
		return runReplay(cmd.InOrStdin(), cmd.OutOrStdout(), replay, replayAll)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayDir, "dir", "replays", "directory holding replay files")
	replayCmd.Flags().BoolVar(&replayAll, "all", false, "print every frame and exit")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(in io.Reader, out io.Writer, replay *game.Replay, all bool) error {
	if err := replay.Verify(); err != nil {
		return fmt.Errorf("replay %s is corrupt: %w", replay.SessionID, err)
	}
	if replay.Size() == 0 {
		fmt.Fprintln(out, "Replay has no frames.")
		return nil
	}
	fmt.Fprintf(out, "Replay %s, %d frames\n", replay.SessionID, replay.Size())

	replay.Start()
	if all {
		for i := 0; ; i++ {
			frame := replay.Next()
			if frame == nil {
				return nil
			}
			printFrame(out, i, replay.Size(), frame)
		}
	}

	printFrame(out, 0, replay.Size(), replay.FrameAt(0))
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "replay> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		verb := "n"
		if len(fields) > 0 {
			verb = strings.ToLower(fields[0])
		}

		var frame *game.ReplayFrame
		switch verb {
		case "q", "quit":
			return nil
		case "n", "next":
			if replay.Position() == replay.Size()-1 {
				fmt.Fprintln(out, "At the last frame.")
				continue
			}
			frame = replay.Skip(1)
		case "p", "prev":
			if frame = replay.Previous(); frame == nil {
				fmt.Fprintln(out, "At the first frame.")
				continue
			}
		case "s", "f":
			if len(fields) != 2 {
				fmt.Fprintf(out, "usage: %s <number>\n", verb)
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Fprintf(out, "%q is not a number\n", fields[1])
				continue
			}
			if verb == "f" {
				if replay.FrameAt(n) == nil {
					fmt.Fprintf(out, "No frame %d.\n", n)
					continue
				}
				n -= replay.Position()
			}
			frame = replay.Skip(n)
		default:
			fmt.Fprintln(out, replayHelp)
			continue
		}
		printFrame(out, replay.Position(), replay.Size(), frame)
	}
}

func printFrame(out io.Writer, index, total int, frame *game.ReplayFrame) {
	action := "game start"
	if frame.Action != "" {
		action = fmt.Sprintf("player %d: %s", frame.PlayerID, frame.Action)
	}
	fmt.Fprintf(out, "--- frame %d/%d, %s (checksum %.12s)\n", index, total-1, action, frame.Checksum)
	printState(out, frame.State)
}
