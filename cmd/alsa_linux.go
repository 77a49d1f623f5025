//go:build linux

package cmd

import (
	"github.com/smazurov/radionode/pkg/linuxav/alsa"
)

// captureStatusPath maps an ALSA device name to its capture status file.
func captureStatusPath(name string) (string, error) {
	card, dev, err := alsa.ParseDeviceName(name)
	if err != nil {
		return "", err
	}
	return alsa.StatusPath(card, dev, alsa.StreamCapture), nil
}

// listPCMRows returns one table row per capture PCM.
func listPCMRows() ([][]string, error) {
	devs, err := alsa.ListDevices()
	if err != nil {
		return nil, err
	}
	var rows [][]string
	for _, d := range devs {
		if d.Type == "capture" {
			rows = append(rows, []string{d.ALSADevice, d.CardID, d.CardName, d.DeviceName})
		}
	}
	return rows, nil
}
