//go:build linux

package driver

import "github.com/smazurov/radionode/pkg/linuxav/alsa"

func probeCards() ([]Card, error) {
	devices, err := alsa.ListDevices()
	if err != nil {
		return nil, err
	}
	var cards []Card
	for _, d := range devices {
		if d.Type != alsa.StreamName(alsa.StreamCapture) {
			continue
		}
		cards = append(cards, Card{ID: d.CardID, Number: d.CardNumber, Device: d.DeviceNumber})
	}
	return cards, nil
}
