package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hoodlink/hoodlink/pkg/protocol"
)

// fanCmd represents the fan command
var fanCmd = &cobra.Command{
	Use:   "fan <address> <level>",
	Short: "Set the fan level (0 = off, 1-3 = speed)",
	Args:  cobra.ExactArgs(2),
	RunE:  runFan,
}

var (
	fanAssumeModern bool
	fanNoRefresh    bool
)

func init() {
	fanCmd.Flags().BoolVar(&fanAssumeModern, "assume-modern", false, "Skip discovery and treat the device as a modern hood")
	fanCmd.Flags().BoolVar(&fanNoRefresh, "no-refresh", false, "Skip the immediate state read after the command")
}

func runFan(cmd *cobra.Command, args []string) error {
	level, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid fan level %q: %w", args[1], err)
	}
	fanCommand, err := protocol.SetFanLevel(level)
	if err != nil {
		return err
	}

	session, _, err := newSession(cmd, args[0], fanAssumeModern)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true
	defer func() { _ = session.Disconnect() }()

	if fanNoRefresh {
		session.SetImmediateRefresh(false)
	}
	if err := session.Submit(cmd.Context(), fanCommand); err != nil {
		return err
	}

	if snap, ok := session.Snapshot(); ok {
		printSnapshot(snap)
	}
	return nil
}
