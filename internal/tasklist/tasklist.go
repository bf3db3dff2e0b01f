package tasklist

import (
	"slices"
	"strings"
	"time"

	"github.com/sandeepkv93/tasktag/internal/model"
)

type Filter string

const (
	FilterAll        Filter = "all"
	FilterPending    Filter = Filter(model.StatusPending)
	FilterInProgress Filter = Filter(model.StatusInProgress)
	FilterCompleted  Filter = Filter(model.StatusCompleted)
)

var Filters = []Filter{FilterAll, FilterPending, FilterInProgress, FilterCompleted}

func (f Filter) Label() string {
	if f == FilterAll {
		return "All"
	}
	return model.Status(f).Label()
}

// ParseFilter maps s to a known filter. Anything unrecognized is FilterAll.
func ParseFilter(s string) Filter {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterPending, FilterInProgress, FilterCompleted:
		return f
	default:
		return FilterAll
	}
}

func (f Filter) Next() Filter {
	i := slices.Index(Filters, ParseFilter(string(f)))
	return Filters[(i+1)%len(Filters)]
}

func FilterByStatus(tasks []model.Task, filter Filter) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	switch filter {
	case FilterPending, FilterInProgress, FilterCompleted:
		for _, t := range tasks {
			if Filter(t.Status) == filter {
				out = append(out, t)
			}
		}
	default:
		out = append(out, tasks...)
	}
	return out
}

// Rank is the display ordering key: in progress, then pending, then
// completed. Unknown statuses sort last.
func Rank(s model.Status) int {
	switch s {
	case model.StatusInProgress:
		return 0
	case model.StatusPending:
		return 1
	case model.StatusCompleted:
		return 2
	default:
		return 3
	}
}

// SortForDisplay returns a copy of tasks stably sorted by Rank. Rows are
// revealed with index-based delays, so equal-rank tasks must keep their
// input order.
func SortForDisplay(tasks []model.Task) []model.Task {
	out := slices.Clone(tasks)
	if out == nil {
		out = []model.Task{}
	}
	slices.SortStableFunc(out, func(a, b model.Task) int {
		return Rank(a.Status) - Rank(b.Status)
	})
	return out
}

func Project(tasks []model.Task, filter Filter) []model.Task {
	return SortForDisplay(FilterByStatus(tasks, filter))
}

func CountTasksForTag(tasks []model.Task, tagID int64) int {
	n := 0
	for _, t := range tasks {
		if model.HasTag(t.Tags, tagID) {
			n++
		}
	}
	return n
}

func TagCounts(tasks []model.Task, tags []model.Tag) map[int64]int {
	out := make(map[int64]int, len(tags))
	for _, tag := range tags {
		out[tag.ID] = CountTasksForTag(tasks, tag.ID)
	}
	return out
}

func SearchTags(tags []model.Tag, query string) []model.Tag {
	q := strings.ToLower(query)
	out := make([]model.Tag, 0, len(tags))
	for _, tag := range tags {
		if q == "" || strings.Contains(strings.ToLower(tag.Name), q) {
			out = append(out, tag)
		}
	}
	return out
}

const staggerStep = 50 * time.Millisecond

func StaggerDelay(index int) time.Duration {
	if index < 0 {
		return 0
	}
	return time.Duration(index) * staggerStep
}
