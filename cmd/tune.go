package cmd

import (
	"fmt"
	"strconv"

	"github.com/smazurov/radionode/internal/events"
	"github.com/smazurov/radionode/internal/logging"
	"github.com/spf13/cobra"
)

// CreateTuneCmd creates the tune command.
func CreateTuneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tune HZ",
		Short: "Set the receiver center frequency",
		Long:  "Range-checks HZ against the radio profile and writes it once to the tuning control file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			hz, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid frequency %q: %w", args[0], err)
			}

			radio, err := loadRadio(c)
			if err != nil {
				return err
			}
			radio.FrequencyHz = 0

			dev, err := OpenRadio(radio, events.New(), logging.GetLogger("tune"))
			if err != nil {
				return err
			}
			defer func() { _ = dev.Close() }()

			if err := Tune(dev, hz); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "tuned to %.0f Hz\n", hz)
			return nil
		},
	}
}
