package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hoodlink/hoodlink/pkg/protocol"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status <address>",
	Short: "Read the hood's current state once",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var statusAssumeModern bool

func init() {
	statusCmd.Flags().BoolVar(&statusAssumeModern, "assume-modern", false, "Skip discovery and treat the device as a modern hood")
}

func runStatus(cmd *cobra.Command, args []string) error {
	session, _, err := newSession(cmd, args[0], statusAssumeModern)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true
	defer func() { _ = session.Disconnect() }()

	if err := session.Connect(cmd.Context()); err != nil {
		return err
	}
	snap, err := session.Refresh(cmd.Context())
	if err != nil {
		return err
	}

	printSnapshot(snap)
	return nil
}

func printSnapshot(snap protocol.Snapshot) {
	fmt.Printf("Fan level:  %d\n", snap.FanLevel)
	fmt.Printf("Postrun:    %s\n", onOff(snap.PostrunActive))
	printLight("Top light", snap.Top)
	printLight("Bottom light", snap.Bottom)
}

func printLight(label string, l protocol.Light) {
	if !l.On {
		fmt.Printf("%-12s %s\n", label+":", onOff(false))
		return
	}
	fmt.Printf("%-12s %s, %d%%, %dK\n", label+":", onOff(true), l.Brightness, l.ColorTempK)
}

func onOff(on bool) string {
	if on {
		return color.GreenString("on")
	}
	return color.HiBlackString("off")
}
