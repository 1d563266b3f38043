package notifier

import (
	"fmt"
	"io"
	"os"

	"github.com/eugeniobenito/Triathlon-Updates/internal/race"
)

// DryRunNotifier prints what would be announced without posting anything
type DryRunNotifier struct {
	w io.Writer
}

// NewDryRunNotifier creates a new dry-run notifier writing to w (stdout when nil)
func NewDryRunNotifier(w io.Writer) *DryRunNotifier {
	if w == nil {
		w = os.Stdout
	}
	return &DryRunNotifier{w: w}
}

// Notify prints the announcements that would be posted
func (n *DryRunNotifier) Notify(docs []*race.Document) error {
	for i, doc := range docs {
		message := formatAnnouncement(doc)
		fmt.Fprintf(n.w, "--- Announcement %d/%d ---\n", i+1, len(docs))
		fmt.Fprintln(n.w, message)
		fmt.Fprintln(n.w)
	}
	return nil
}
