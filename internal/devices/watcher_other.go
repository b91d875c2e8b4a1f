//go:build !linux

package devices

import "context"

// Run reports that hotplug is unavailable on this platform.
func (w *Watcher) Run(_ context.Context) error {
	return ErrUnsupported
}
