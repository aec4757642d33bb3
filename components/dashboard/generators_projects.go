package dashboard

import (
	"context"
	"time"
)

// Task statuses accepted by task.update.
const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskDone       = "done"
)

func projectsFeed(_ context.Context, feed FeedContext) (FeedData, error) {
	j := feed.Jitter
	projects := make([]Project, 0, len(projectCatalog))
	for _, seed := range projectCatalog {
		progress := ProgressRange.Draw(j)
		spent := round2(seed.Budget * j.Between(0.1, 1.0))
		p := Project{
			ID:       seed.ID,
			Name:     seed.Name,
			Owner:    seed.Owner,
			Progress: progress,
			Budget:   seed.Budget,
			Spent:    spent,
			DueDate:  feed.Now.Add(time.Duration(seed.DueDays) * 24 * time.Hour).Truncate(24 * time.Hour),
		}
		switch {
		case progress >= ProgressRange.Max:
			p.Status = "completed"
		case spent > seed.Budget*0.9 && progress < 80:
			p.Status = "at_risk"
		default:
			p.Status = "on_track"
		}
		projects = append(projects, p)
	}
	return FeedData{
		"items": projects,
		"total": len(projects),
	}, nil
}

func generateTasks(ctx context.Context, feed FeedContext) ([]Task, error) {
	j := feed.Jitter
	tasks := make([]Task, 0, len(taskCatalog))
	for _, seed := range taskCatalog {
		tasks = append(tasks, Task{
			ID:        seed.ID,
			ProjectID: seed.ProjectID,
			Title:     seed.Title,
			Assignee:  seed.Assignee,
			Priority:  seed.Priority,
			Status:    j.Pick(TaskTodo, TaskInProgress, TaskDone),
			DueDate:   feed.Now.Add(time.Duration(seed.DueDays) * 24 * time.Hour).Truncate(24 * time.Hour),
		})
	}

	if feed.Actions != nil {
		created, err := feed.Actions.ByAction(ctx, ActionCreateTask)
		if err != nil {
			return nil, err
		}
		for _, rec := range created {
			tasks = append(tasks, Task{
				ID:        rec.Target,
				ProjectID: stringOr(rec.Payload["project_id"], ""),
				Title:     stringOr(rec.Payload["title"], "Untitled task"),
				Assignee:  stringOr(rec.Payload["assignee"], rec.Actor),
				Priority:  stringOr(rec.Payload["priority"], "medium"),
				Status:    TaskTodo,
				DueDate:   rec.CreatedAt.Add(7 * 24 * time.Hour).Truncate(24 * time.Hour),
			})
		}
	}

	for i := range tasks {
		if rec, ok := lookupAction(ctx, feed, ActionUpdateTask, tasks[i].ID); ok {
			tasks[i].Status = stringOr(rec.Payload["status"], tasks[i].Status)
		}
	}
	return tasks, nil
}

func tasksFeed(ctx context.Context, feed FeedContext) (FeedData, error) {
	tasks, err := generateTasks(ctx, feed)
	if err != nil {
		return nil, err
	}
	project := feed.Param("project_id", "")
	status := feed.Param("status", "")
	filtered := make([]Task, 0, len(tasks))
	counts := map[string]int{TaskTodo: 0, TaskInProgress: 0, TaskDone: 0}
	for _, t := range tasks {
		if project != "" && t.ProjectID != project {
			continue
		}
		counts[t.Status]++
		if status != "" && t.Status != status {
			continue
		}
		filtered = append(filtered, t)
	}
	return FeedData{
		"items":  filtered,
		"counts": counts,
	}, nil
}
