package persistence

import (
	"context"
	"time"

	"github.com/Aworminator/Project-Tracker/project"
	"github.com/Aworminator/Project-Tracker/scope"
)

// Stats is the dashboard summary. Everything is computed from fresh
// queries under the caller's scope; nothing is cached across requests.
type Stats struct {
	ProjectCount      int `json:"projectCount"`
	ActiveProjects    int `json:"activeProjects"`
	OnHoldProjects    int `json:"onHoldProjects"`
	CompletedProjects int `json:"completedProjects"`

	TaskCount        int `json:"taskCount"`
	UserTaskCount    int `json:"userTaskCount"`
	CompletedTasks   int `json:"completedTasks"`
	InProgressTasks  int `json:"inProgressTasks"`
	PendingTasks     int `json:"pendingTasks"`
	OverdueTaskCount int `json:"overdueTaskCount"`
}

// DashboardStats aggregates project and task counts for the dashboard.
// userID narrows the per-user task figures to the acting identity.
func (r *Repository) DashboardStats(ctx context.Context, s scope.ProjectScope, userID string) (*Stats, error) {
	stats := &Stats{}

	projects, err := r.ListProjects(ctx, s)
	if err != nil {
		return nil, err
	}
	stats.ProjectCount = len(projects)
	for _, p := range projects {
		switch p.Status {
		case project.ProjectActive:
			stats.ActiveProjects++
		case project.ProjectOnHold:
			stats.OnHoldProjects++
		case project.ProjectCompleted:
			stats.CompletedProjects++
		}
	}

	tasks, err := r.ListTasks(ctx, TaskFilter{Scope: s})
	if err != nil {
		return nil, err
	}
	stats.TaskCount = len(tasks)

	now := time.Now()
	for _, t := range tasks {
		if t.AssignedTo == nil || *t.AssignedTo != userID {
			continue
		}
		stats.UserTaskCount++
		switch t.Status {
		case project.TaskCompleted:
			stats.CompletedTasks++
		case project.TaskInProgress:
			stats.InProgressTasks++
		case project.TaskPending:
			stats.PendingTasks++
		}
		if t.Overdue(now) {
			stats.OverdueTaskCount++
		}
	}

	return stats, nil
}
