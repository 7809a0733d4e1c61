package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hoodlink/hoodlink/pkg/protocol"
)

// lightCmd represents the light command
var lightCmd = &cobra.Command{
	Use:   "light <address> <top|bottom>",
	Short: "Control one light zone",
	Long: `Control one of the hood's two light zones. Exactly one of
--brightness, --color-temp, --on or --off must be given.`,
	Args: cobra.ExactArgs(2),
	RunE: runLight,
}

var (
	lightAssumeModern bool
	lightNoRefresh    bool
	lightBrightness   int
	lightColorTemp    int
	lightOn           bool
	lightOff          bool
)

func init() {
	lightCmd.Flags().BoolVar(&lightAssumeModern, "assume-modern", false, "Skip discovery and treat the device as a modern hood")
	lightCmd.Flags().BoolVar(&lightNoRefresh, "no-refresh", false, "Skip the immediate state read after the command")
	lightCmd.Flags().IntVarP(&lightBrightness, "brightness", "b", -1, "Brightness in percent (0-100)")
	lightCmd.Flags().IntVarP(&lightColorTemp, "color-temp", "k", 0, "Color temperature in Kelvin (2700-6500)")
	lightCmd.Flags().BoolVar(&lightOn, "on", false, "Turn the zone on")
	lightCmd.Flags().BoolVar(&lightOff, "off", false, "Turn the zone off")
}

func parseZone(arg string) (protocol.Zone, error) {
	switch arg {
	case "top":
		return protocol.ZoneTop, nil
	case "bottom":
		return protocol.ZoneBottom, nil
	default:
		return 0, fmt.Errorf("invalid zone %q: must be top or bottom", arg)
	}
}

func buildLightCommand(zone protocol.Zone) (protocol.Command, error) {
	given := 0
	if lightBrightness >= 0 {
		given++
	}
	if lightColorTemp != 0 {
		given++
	}
	if lightOn {
		given++
	}
	if lightOff {
		given++
	}
	if given != 1 {
		return protocol.Command{}, fmt.Errorf("exactly one of --brightness, --color-temp, --on or --off must be given")
	}

	switch {
	case lightBrightness >= 0:
		return protocol.SetLightBrightness(zone, lightBrightness)
	case lightColorTemp != 0:
		return protocol.SetLightColorTemp(zone, lightColorTemp)
	default:
		return protocol.SetLightPower(zone, lightOn)
	}
}

func runLight(cmd *cobra.Command, args []string) error {
	zone, err := parseZone(args[1])
	if err != nil {
		return err
	}
	lightCommand, err := buildLightCommand(zone)
	if err != nil {
		return err
	}

	session, _, err := newSession(cmd, args[0], lightAssumeModern)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true
	defer func() { _ = session.Disconnect() }()

	if lightNoRefresh {
		session.SetImmediateRefresh(false)
	}
	if err := session.Submit(cmd.Context(), lightCommand); err != nil {
		return err
	}

	if snap, ok := session.Snapshot(); ok {
		printSnapshot(snap)
	}
	return nil
}
