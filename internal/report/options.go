package report

import (
	"slices"
	"time"
)

const (
	DefaultTitle           = "Maintenance Report"
	DefaultDateLayout      = "01/02/06"
	DefaultTimestampLayout = "Monday January 2 2006, 3:04 PM"
)

type Options struct {
	Title string

	// ActiveLists limits per-member reports and the unassigned section.
	// Empty means every open list.
	ActiveLists []string

	// SuppressedLists are left out of per-member reports even when active,
	// typically terminal states such as "Complete".
	SuppressedLists []string

	// MinContentLines is the number of card lines below which a member
	// report reads "Nothing to report".
	MinContentLines int

	DateLayout      string
	TimestampLayout string
	Location        *time.Location
}

func DefaultOptions() Options {
	return Options{
		Title:           DefaultTitle,
		MinContentLines: 1,
		DateLayout:      DefaultDateLayout,
		TimestampLayout: DefaultTimestampLayout,
		Location:        time.Local,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Title == "" {
		o.Title = d.Title
	}
	if o.DateLayout == "" {
		o.DateLayout = d.DateLayout
	}
	if o.TimestampLayout == "" {
		o.TimestampLayout = d.TimestampLayout
	}
	if o.Location == nil {
		o.Location = d.Location
	}
	return o
}

func (o Options) active(listName string) bool {
	if slices.Contains(o.SuppressedLists, listName) {
		return false
	}
	return len(o.ActiveLists) == 0 || slices.Contains(o.ActiveLists, listName)
}
