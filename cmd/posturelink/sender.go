// cmd/posturelink/sender.go
package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/posturelink/internal/clock"
	"github.com/tamzrod/posturelink/internal/config"
	"github.com/tamzrod/posturelink/internal/sender"
	"github.com/tamzrod/posturelink/internal/sensor"
)

func newSenderCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sender",
		Short: "Run the wearable sampling loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*cfgPath, "posturelink-sender")
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			src, closeSrc, err := buildSource(cfg.Sender.Source)
			if err != nil {
				return err
			}
			defer closeSrc()

			l, err := dial(cfg, log)
			if err != nil {
				return err
			}
			defer l.Close()

			clk := clock.Real()
			smp := sender.NewSampler(sender.Config{
				Battery: cfg.Sender.Battery,
				Timing:  sender.DefaultTiming(),
			}, src, l, clk, log)

			disp := sender.NewDispatcher(smp, log)
			go func() {
				if err := clean(l.Listen(ctx, disp.Handle)); err != nil {
					log.Error("command listener stopped", zap.Error(err))
				}
			}()

			stopUSR1 := onCalibrateSignal(smp.RequestCalibration)
			defer stopUSR1()

			log.Info("sender ready", zap.String("source", cfg.Sender.Source.Kind))
			return clean(smp.Run(ctx))
		},
	}
}

func buildSource(sc config.SourceConfig) (sensor.Source, func() error, error) {
	switch sc.Kind {
	case config.SourceModbus:
		m, err := sensor.NewModbus(sensor.ModbusConfig{
			Endpoint: sc.Endpoint,
			UnitID:   sc.UnitID,
			Address:  sc.Address,
			Timeout:  sc.Timeout(),
		})
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil
	default:
		pitch, roll := sc.Pitch, sc.Roll
		return sensor.Func(func() (float64, float64, error) { return pitch, roll, nil }),
			func() error { return nil }, nil
	}
}
