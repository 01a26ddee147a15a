package components

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"bufferly/internal/database"
)

const titleLimit = 60

// ItemTitle is the single-line label shown for an item.
func ItemTitle(item *database.ClipboardItem) string {
	if item.Type.IsImage() {
		return "Image"
	}

	content := strings.Join(strings.Fields(item.Text()), " ")
	if content == "" {
		return "Empty text"
	}
	if utf8.RuneCountInString(content) > titleLimit {
		return string([]rune(content)[:titleLimit]) + "…"
	}
	return content
}

func FormatTimeAgo(timestamp, now time.Time) string {
	diff := now.Sub(timestamp)

	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		minutes := int(diff.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "Yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	}
	return timestamp.Format("Jan 2, 2006")
}

func FormatBytes(bytes int) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}
