// Package notify formats listings into messages and delivers them over
// the Telegram Bot API.
package notify

import (
	"strings"

	"github.com/douscan/douscan/internal/textutil"
	"github.com/douscan/douscan/internal/vacancy"
)

const (
	// descriptionLimit is the soft cut applied to the description block.
	descriptionLimit = 350
	// messageLimit is the hard ceiling for a whole message; Telegram
	// rejects anything above 4096 so we stay comfortably under it.
	messageLimit = 3900

	metaSeparator = " | "
)

// Format renders a listing as a plain-text message. Layout is the title,
// a metadata line of company, cities, experience, and category with empty
// fields omitted, the description cut to its soft limit, and the listing
// URL. The assembled message never exceeds the hard ceiling.
func Format(l vacancy.Listing) string {
	var b strings.Builder

	title := strings.TrimSpace(l.Title)
	if title != "" {
		b.WriteString(title)
	}

	meta := metaLine(l)
	if meta != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(meta)
	}

	desc := textutil.Clean(l.Description)
	if desc != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(textutil.Truncate(desc, descriptionLimit))
	}

	if l.URL != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(l.URL)
	}

	return textutil.Truncate(b.String(), messageLimit)
}

func metaLine(l vacancy.Listing) string {
	parts := make([]string, 0, 4)
	for _, v := range []string{l.Company, l.Cities, l.Experience, l.Category} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, metaSeparator)
}
