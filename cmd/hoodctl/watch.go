package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hoodlink/hoodlink/pkg/protocol"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <address>",
	Short: "Poll the hood and print every state change",
	Long: `Connect to the hood and keep polling on the configured cadence,
printing each fresh snapshot. Stop with Ctrl+C; the link is released on
exit.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var watchAssumeModern bool

func init() {
	watchCmd.Flags().BoolVar(&watchAssumeModern, "assume-modern", false, "Skip discovery and treat the device as a modern hood")
}

func runWatch(cmd *cobra.Command, args []string) error {
	session, _, err := newSession(cmd, args[0], watchAssumeModern)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true
	defer func() { _ = session.Disconnect() }()

	unsubscribe := session.Subscribe(func(snap protocol.Snapshot) {
		fmt.Printf("--- %s ---\n", snap.CapturedAt.Format("15:04:05"))
		printSnapshot(snap)
	})
	defer unsubscribe()

	if err := session.Start(); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-cmd.Context().Done():
	}
	return nil
}
