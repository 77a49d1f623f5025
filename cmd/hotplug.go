package cmd

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/smazurov/radionode/internal/events"
	"github.com/smazurov/radionode/pkg/linuxav/hotplug"
)

// WatchSoundCards publishes a SoundCardEvent for every card added, removed
// or changed until ctx ends.
func WatchSoundCards(ctx context.Context, bus *events.Bus, logger *slog.Logger) error {
	mon, err := hotplug.NewMonitor()
	if err != nil {
		return err
	}
	defer func() { _ = mon.Close() }()
	mon.AddSubsystemFilter(hotplug.SubsystemSound)

	ch := make(chan hotplug.Event, 16)
	errCh := make(chan error, 1)
	go func() { errCh <- mon.Run(ctx, ch) }()

	for ev := range ch {
		if ce, ok := soundCardEvent(ev); ok {
			logger.Info("Sound card event", "action", ce.Action, "card", ce.Card)
			bus.Publish(ce)
		}
	}

	err = <-errCh
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func soundCardEvent(ev hotplug.Event) (events.SoundCardEvent, bool) {
	card, ok := ev.Card()
	if !ok {
		return events.SoundCardEvent{}, false
	}
	switch ev.Action {
	case hotplug.ActionAdd, hotplug.ActionRemove, hotplug.ActionChange:
	default:
		return events.SoundCardEvent{}, false
	}
	path := ev.DevPath
	if path == "" {
		path = ev.KObj
	}
	return events.SoundCardEvent{
		Action:    ev.Action,
		Card:      card,
		DevPath:   path,
		Timestamp: time.Now().Format(time.RFC3339),
	}, true
}
