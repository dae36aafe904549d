package cli

import (
	"fmt"
	"strings"
	"time"

	clierrors "github.com/julianstephens/missionctl/internal/errors"
	"github.com/julianstephens/missionctl/internal/models"
)

// ShortIDLen is how many id characters list output shows
const ShortIDLen = 8

// ShortID truncates id for table output
func ShortID(id string) string {
	if len(id) <= ShortIDLen {
		return id
	}
	return id[:ShortIDLen]
}

func resolveID(kind, arg string, ids []string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", clierrors.Usagef("%s id must not be empty", kind)
	}
	var matches []string
	for _, id := range ids {
		if id == arg {
			return id, nil
		}
		if strings.HasPrefix(id, arg) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", clierrors.Usagef("%s not found: %s", kind, arg)
	case 1:
		return matches[0], nil
	default:
		return "", clierrors.Usagef("%s id %q is ambiguous (%d matches)", kind, arg, len(matches))
	}
}

// ResolveHabitID accepts a full id or a unique prefix of one
func (c *Context) ResolveHabitID(arg string) (string, error) {
	habits := c.Engine.Habits()
	ids := make([]string, len(habits))
	for i, h := range habits {
		ids[i] = h.ID
	}
	return resolveID("habit", arg, ids)
}

// ResolveMissionID accepts a full id or a unique prefix of one
func (c *Context) ResolveMissionID(arg string) (string, error) {
	missions := c.Engine.MiniMissions()
	ids := make([]string, len(missions))
	for i, m := range missions {
		ids[i] = m.ID
	}
	return resolveID("mini mission", arg, ids)
}

// FormatClock renders d as MM:SS, or H:MM:SS past an hour
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatTime renders an optional timestamp in loc
func FormatTime(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "-"
	}
	return t.In(loc).Format("2006-01-02 15:04")
}

// HabitSummary is the one-line list rendering of h
func HabitSummary(h models.Habit) string {
	return fmt.Sprintf("%-8s  %-28s  streak %-3d  %3d/%-3d days (%3d%%)  %s",
		ShortID(h.ID), h.Title, h.Streak, len(h.CompletedDates), h.TotalDays,
		h.ProgressPercent(), HabitStatusLabel(h.Status))
}
