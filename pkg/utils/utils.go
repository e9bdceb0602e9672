// pkg/utils/utils.go
package utils

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration форматирует продолжительность в читаемый вид
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dч %dм", hours, minutes)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	}
	return fmt.Sprintf("%.1fс", d.Seconds())
}

// FormatSigned форматирует целое со знаком: +3, -2, 0
func FormatSigned(v int) string {
	if v > 0 {
		return fmt.Sprintf("+%d", v)
	}
	return fmt.Sprintf("%d", v)
}

// AtHour возвращает сегодняшнюю дату в loc с заданным часом
func AtHour(now time.Time, loc *time.Location, hour int) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
}

// SanitizeFileName заменяет пробелы и разделители пути
func SanitizeFileName(name string) string {
	r := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", "#", "_", ":", "-")
	return r.Replace(strings.TrimSpace(name))
}
