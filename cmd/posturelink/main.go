// cmd/posturelink/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/posturelink/internal/config"
	"github.com/tamzrod/posturelink/internal/link"
	"github.com/tamzrod/posturelink/internal/logging"
)

var version = "dev"

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:   "posturelink",
		Short: "Posture sensor link: wearable sender and display node",
		Long: `posturelink runs either end of the posture link.

  sender   samples tilt, runs calibration and broadcasts telemetry
  display  fuses telemetry with the hydration timer into one alert
  command  sends a single calibrate or vibration command`,
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "posturelink.yaml", "path to config file")

	root.AddCommand(
		newSenderCmd(&cfgPath),
		newDisplayCmd(&cfgPath),
		newCommandCmd(&cfgPath),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// setup loads, validates and normalizes the config and builds the logger.
func setup(path, service string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("config load failed: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, service)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log, nil
}

func dial(cfg *config.Config, log *zap.Logger) (*link.UDP, error) {
	l, err := link.DialUDP(link.UDPConfig{
		Group:     cfg.Link.Group,
		Port:      cfg.Link.Port(),
		Interface: cfg.Link.Interface,
	})
	if err != nil {
		return nil, err
	}
	log.Info("link up",
		zap.String("group", cfg.Link.Group),
		zap.Int("channel", cfg.Link.Channel),
		zap.Int("port", cfg.Link.Port()),
	)
	return l, nil
}

// clean maps shutdown by signal to a nil error.
func clean(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, link.ErrClosed) {
		return nil
	}
	return err
}
