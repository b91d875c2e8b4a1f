//go:build linux

package devices

import (
	"context"
	"errors"
	"time"

	"github.com/smazurov/thermview/pkg/linuxav/hotplug"
)

// settleDelay lets udev create the by-id links and finish permissions
// before the device list is read.
const settleDelay = 500 * time.Millisecond

// Run primes the watcher and rescans on every video4linux add or remove
// uevent until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	listener, err := hotplug.Listen(hotplug.SubsystemVideo4Linux)
	if err != nil {
		return err
	}
	defer listener.Close()

	if err := w.Prime(); err != nil {
		w.logger.Warn("Failed to list devices at startup", "error", err)
	}

	for {
		ev, err := listener.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		if ev.Action != hotplug.ActionAdd && ev.Action != hotplug.ActionRemove {
			continue
		}
		w.logger.Debug("video4linux uevent", "action", ev.Action, "dev_name", ev.DevName)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(settleDelay):
		}
		if _, err := w.Rescan(); err != nil {
			w.logger.Warn("Failed to rescan devices", "error", err)
		}
	}
}
