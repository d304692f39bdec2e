package notify

import (
	"context"
	"os"
	"os/exec"
	"runtime"

	"github.com/gen2brain/beeep"

	"github.com/manav03panchal/watchout/internal/errors"
	"github.com/manav03panchal/watchout/internal/model"
)

// DesktopSink shows native desktop notifications.
type DesktopSink struct {
	notify   func(title, message, icon string) error
	lookPath func(file string) (string, error)
	getenv   func(key string) string
	goos     string
}

// NewDesktopSink creates a sink backed by the platform notification service.
func NewDesktopSink() *DesktopSink {
	return &DesktopSink{
		notify: func(title, message, icon string) error {
			return beeep.Notify(title, message, icon)
		},
		lookPath: exec.LookPath,
		getenv:   os.Getenv,
		goos:     runtime.GOOS,
	}
}

// Name returns "desktop".
func (s *DesktopSink) Name() string {
	return "desktop"
}

// Probe reports whether notifications can be shown on this host. It returns
// ErrPermissionDenied when there is no notification service to talk to.
func (s *DesktopSink) Probe() error {
	switch s.goos {
	case "linux", "freebsd", "netbsd", "openbsd":
		if s.getenv("DBUS_SESSION_BUS_ADDRESS") != "" {
			return nil
		}
		if _, err := s.lookPath("notify-send"); err == nil {
			return nil
		}
		return errors.ErrPermissionDenied
	case "darwin":
		if _, err := s.lookPath("osascript"); err != nil {
			return errors.ErrPermissionDenied
		}
		return nil
	default:
		return nil
	}
}

// Send shows n.
func (s *DesktopSink) Send(ctx context.Context, n *model.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.notify(n.Title, n.Message, "")
}
