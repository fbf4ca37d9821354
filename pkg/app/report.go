package app

import (
	"sort"
	"time"

	"tableflip.dev/notiq/pkg/model"
)

// ReportSection groups completed tasks by course.
type ReportSection struct {
	Course string        `json:"course"`
	Tasks  []*model.Task `json:"tasks"`
}

// ReportResult lists the tasks completed inside a time window.
type ReportResult struct {
	Since    time.Time       `json:"since"`
	Until    time.Time       `json:"until"`
	Sections []ReportSection `json:"sections"`
	Total    int             `json:"total"`
}

// Report returns the tasks completed between since and until, grouped by
// course and ordered by completion time. Bounds given in reverse are swapped.
func (s *Service) Report(since, until time.Time) ReportResult {
	if since.After(until) {
		since, until = until, since
	}
	grouped := make(map[string][]*model.Task)
	total := 0
	for _, t := range s.Snapshot().Completed {
		if t.CompletedAt.IsZero() || t.CompletedAt.Before(since) || t.CompletedAt.After(until) {
			continue
		}
		grouped[t.Course] = append(grouped[t.Course], t)
		total++
	}

	courses := make([]string, 0, len(grouped))
	for course := range grouped {
		courses = append(courses, course)
	}
	sort.Strings(courses)

	sections := make([]ReportSection, 0, len(courses))
	for _, course := range courses {
		tasks := grouped[course]
		sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].CompletedAt.Before(tasks[j].CompletedAt) })
		sections = append(sections, ReportSection{Course: course, Tasks: tasks})
	}
	return ReportResult{Since: since, Until: until, Sections: sections, Total: total}
}
