// cmd/posturelink/command.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/posturelink/internal/packet"
)

func newCommandCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "command",
		Short: "Broadcast one command to the sender",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "calibrate",
			Short: "Ask the sender to recalibrate",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return sendOnce(*cfgPath, packet.Calibrate())
			},
		},
		&cobra.Command{
			Use:       "vibration on|off",
			Short:     "Enable or disable the sender's haptic motor",
			Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
			ValidArgs: []string{"on", "off"},
			RunE: func(cmd *cobra.Command, args []string) error {
				return sendOnce(*cfgPath, packet.SetVibration(args[0] == "on"))
			},
		},
	)
	return cmd
}

// sendOnce broadcasts c a single time. Delivery is not confirmed.
func sendOnce(cfgPath string, c packet.Command) error {
	cfg, log, err := setup(cfgPath, "posturelink-command")
	if err != nil {
		return err
	}
	defer log.Sync()

	l, err := dial(cfg, log)
	if err != nil {
		return err
	}
	defer l.Close()

	if err := l.Send(packet.EncodeCommand(c)); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	log.Info("command sent", zap.Uint8("id", uint8(c.Kind)), zap.Uint8("value", c.Value))
	return nil
}
