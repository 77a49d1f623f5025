package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/smazurov/radionode/internal/driver"
	"github.com/smazurov/radionode/internal/events"
	"github.com/smazurov/radionode/internal/logging"
	"github.com/smazurov/radionode/internal/mdns"
	"github.com/spf13/cobra"
)

type devicesReport struct {
	Drivers []driver.Args `json:"drivers"`
	PCMs    [][]string    `json:"pcms,omitempty"`
	Nodes   []mdns.Node   `json:"nodes,omitempty"`
}

// CreateDevicesCmd creates the devices command.
func CreateDevicesCmd() *cobra.Command {
	var (
		asJSON  bool
		network time.Duration
	)

	c := &cobra.Command{
		Use:   "devices",
		Short: "List attachable radios",
		Long: "Lists the driver descriptors for attachable radios and the ALSA capture PCMs on this host. " +
			"With --network, also browses the local network for other radionode instances.",
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			logger := logging.GetLogger("devices")
			radio, err := loadRadio(c)
			if err != nil {
				return err
			}

			reg, err := NewDriverRegistry(radio, events.New(), logger)
			if err != nil {
				return err
			}
			report := devicesReport{}
			report.Drivers, err = reg.Find(nil)
			if err != nil {
				logger.Warn("Driver discovery incomplete", "error", err)
			}

			if report.PCMs, err = listPCMRows(); err != nil {
				logger.Debug("ALSA enumeration unavailable", "error", err)
			}

			if network > 0 {
				report.Nodes, err = mdns.Discover(c.Context(), network)
				if err != nil {
					logger.Warn("mDNS browse failed", "error", err)
				}
			}

			if asJSON {
				enc := json.NewEncoder(c.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return writeDevicesTable(c.OutOrStdout(), report, logger)
		},
	}

	c.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	c.Flags().DurationVar(&network, "network", 0, "Browse mDNS for radionode instances for this long")
	return c
}

func writeDevicesTable(out io.Writer, r devicesReport, logger *slog.Logger) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "DRIVER\tDEVICE\tALSA DEVICE")
	for _, a := range r.Drivers {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", a[driver.KeyDriver], a[driver.KeyDevice], a[driver.KeyALSADevice])
	}

	if len(r.PCMs) > 0 {
		fmt.Fprintln(tw, "\nALSA DEVICE\tCARD ID\tCARD\tPCM")
		for _, row := range r.PCMs {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
	}

	if len(r.Nodes) > 0 {
		fmt.Fprintln(tw, "\nNODE\tHOST\tPORT\tADDRESSES")
		for _, n := range r.Nodes {
			addrs := make([]string, 0, len(n.Addresses))
			for _, ip := range n.Addresses {
				addrs = append(addrs, ip.String())
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", n.Instance, n.Hostname, n.Port, strings.Join(addrs, ","))
		}
	}

	if err := tw.Flush(); err != nil {
		logger.Warn("Failed to write device table", "error", err)
		return err
	}
	return nil
}
