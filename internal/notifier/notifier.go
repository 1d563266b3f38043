package notifier

import (
	"fmt"
	"io"

	"github.com/eugeniobenito/Triathlon-Updates/internal/race"
)

// Notifier defines the interface for posting race announcements
type Notifier interface {
	// Notify posts one announcement per race document
	Notify(docs []*race.Document) error
}

// Names accepted by New
const (
	NameDryRun   = "dry-run"
	NameTwitter  = "twitter"
	NameTelegram = "telegram"
)

// New returns the notifier registered under name. An empty name returns nil.
// Dry-run output goes to w.
func New(name string, w io.Writer) (Notifier, error) {
	switch name {
	case "":
		return nil, nil
	case NameDryRun:
		return NewDryRunNotifier(w), nil
	case NameTwitter:
		n, err := NewTwitterNotifier()
		if err != nil {
			return nil, err
		}
		return n, nil
	case NameTelegram:
		n, err := NewTelegramNotifier()
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unknown notifier: %s", name)
	}
}
