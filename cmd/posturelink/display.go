// cmd/posturelink/display.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/posturelink/internal/clock"
	"github.com/tamzrod/posturelink/internal/display"
	"github.com/tamzrod/posturelink/internal/writer"
)

func newDisplayCmd(cfgPath *string) *cobra.Command {
	var noConsole bool

	cmd := &cobra.Command{
		Use:   "display",
		Short: "Run the display node",
		Long: `Run the display node. Console keys (one per line):
  c        calibrate the sender
  v on|off toggle sender vibration
  d        record a drink
  r        reset the drink count
  q        quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*cfgPath, "posturelink-display")
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			l, err := dial(cfg, log)
			if err != nil {
				return err
			}
			defer l.Close()

			var out io.Writer = os.Stdout
			if noConsole {
				out = nil
			}
			sinks, closeSinks, err := writer.Build(ctx, cfg, out, log)
			if err != nil {
				return err
			}
			defer closeSinks()

			clk := clock.Real()
			st := display.NewStation(display.Config{
				TickPeriod:        cfg.Display.Tick(),
				LinkTimeout:       cfg.Display.LinkTimeout(),
				CalibrateCooldown: cfg.Display.CalibrateCooldown(),
				WaterThreshold:    cfg.Display.WaterThresholdTicks,
				HistoryEvery:      cfg.Display.HistoryEveryTicks,
				HistoryPoints:     cfg.Display.HistoryPoints,
			}, l, clk, log)

			go func() {
				if err := clean(l.Listen(ctx, st.Receive)); err != nil {
					log.Error("telemetry listener stopped", zap.Error(err))
					cancel()
				}
			}()

			if !noConsole {
				go readConsole(ctx, os.Stdin, os.Stdout, st, clk, cancel)
			}

			return clean(st.Run(ctx, sinks))
		},
	}
	cmd.Flags().BoolVar(&noConsole, "no-console", false, "disable the stdin console and status line")
	return cmd
}

// station is the part of display.Station the console drives.
type station interface {
	Calibrate(now time.Time) error
	SetVibration(on bool) error
	Drink()
	ResetWater()
}

func readConsole(ctx context.Context, in io.Reader, out io.Writer, st station, clk clock.Clock, quit func()) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		done, msg := handleLine(sc.Text(), st, clk.Now())
		if msg != "" {
			fmt.Fprintln(out, msg)
		}
		if done {
			quit()
			return
		}
	}
}

// handleLine executes one console line. done is true on quit.
func handleLine(line string, st station, now time.Time) (done bool, msg string) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false, ""
	}

	switch fields[0] {
	case "c", "cal", "calibrate":
		if err := st.Calibrate(now); err != nil {
			return false, "calibrate: " + err.Error()
		}
		return false, "HOLD STILL..."

	case "v", "vib", "vibration":
		if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
			return false, "usage: v on|off"
		}
		on := fields[1] == "on"
		if err := st.SetVibration(on); err != nil {
			return false, "vibration: " + err.Error()
		}
		return false, "vibration " + fields[1]

	case "d", "drink":
		st.Drink()
		return false, ""

	case "r", "reset":
		st.ResetWater()
		return false, ""

	case "q", "quit", "exit":
		return true, ""

	default:
		return false, "unknown command " + fields[0] + " (c, v on|off, d, r, q)"
	}
}
