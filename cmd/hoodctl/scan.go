package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hoodlink/hoodlink/pkg/hood"
	"github.com/hoodlink/hoodlink/scanner"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for BLE range hoods",
	Long: `Scan for Berbel-style range hoods and display their address, name,
signal strength and protocol dialect. Legacy (HOOD_PER) hoods are listed
but cannot be controlled.`,
	RunE: runScan,
}

var (
	scanDuration time.Duration
	scanFormat   string
	scanAll      bool
)

func init() {
	scanCmd.Flags().DurationVarP(&scanDuration, "duration", "d", 10*time.Second, "Scan duration")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "table", "Output format (table, json)")
	scanCmd.Flags().BoolVarP(&scanAll, "all", "a", false, "Include devices that are not recognizable hoods")
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanFormat != "table" && scanFormat != "json" {
		return fmt.Errorf("invalid format '%s': must be table or json", scanFormat)
	}

	logger, err := configureLogger(cmd)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	s := scanner.NewScanner(logger)
	opts := scanner.DefaultScanOptions()
	opts.Duration = scanDuration
	opts.All = scanAll

	found, err := s.Scan(cmd.Context(), opts, nil)
	if err != nil {
		return err
	}

	discoveries := make([]scanner.Discovery, 0, len(found))
	for _, d := range found {
		discoveries = append(discoveries, d)
	}
	sort.Slice(discoveries, func(i, j int) bool {
		return discoveries[i].RSSI > discoveries[j].RSSI
	})

	if scanFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(discoveries)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ADDRESS\tNAME\tRSSI\tPROTOCOL")
	for _, d := range discoveries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			d.Identity.Address, d.Identity.Name, d.RSSI, colorProtocol(d.Identity.Protocol))
	}
	return w.Flush()
}

func colorProtocol(p hood.Protocol) string {
	switch p {
	case hood.ProtocolModern:
		return color.GreenString(p.String())
	case hood.ProtocolLegacy:
		return color.YellowString(p.String())
	default:
		return color.RedString(p.String())
	}
}
