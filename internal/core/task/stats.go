package task

import "time"

// Stats summarizes a set of tasks by status.
type Stats struct {
	Total            int `json:"total"`
	Pending          int `json:"pending"`
	InProgress       int `json:"in_progress"`
	Completed        int `json:"completed"`
	Failed           int `json:"failed"`
	AwaitingApproval int `json:"awaiting_approval"`
	Overdue          int `json:"overdue"`
}

// ComputeStats counts tasks per status. Overdue counts tasks whose due date
// has passed and that are not completed, independent of the status counts.
func ComputeStats(tasks []Task, now time.Time) Stats {
	var s Stats
	for i := range tasks {
		t := &tasks[i]
		s.Total++

		switch t.Status {
		case StatusPending:
			s.Pending++
		case StatusInProgress:
			s.InProgress++
		case StatusCompleted:
			s.Completed++
		case StatusFailed:
			s.Failed++
		case StatusAwaitingApproval:
			s.AwaitingApproval++
		}

		if t.IsOverdue(now) {
			s.Overdue++
		}
	}
	return s
}
