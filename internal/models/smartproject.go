package models

import "fmt"

// SmartTaskID returns the derived task id for a shoot in the smart project.
func SmartTaskID(shootID string) string {
	return "task-shoot-" + shootID
}

// SyncSmartProject recomputes the smart project's task list from the current
// shoots. One task exists per shoot that has not reached the exportUpload
// stage; tasks for exported or deleted shoots are removed and existing entries
// are updated in place. Projects without the smartProject flag are untouched.
func SyncSmartProject(projects []Project, shoots []Shoot) []Project {
	result := make([]Project, len(projects))
	copy(result, projects)

	for pi := range result {
		if !result[pi].SmartProject {
			continue
		}

		active := make(map[string]Shoot, len(shoots))
		for _, shoot := range shoots {
			if !shoot.Progress.ExportUpload {
				active[SmartTaskID(shoot.ID)] = shoot
			}
		}

		var tasks []Task
		for _, task := range result[pi].Tasks {
			shoot, ok := active[task.ID]
			if !ok {
				continue
			}
			tasks = append(tasks, smartTaskFor(shoot))
			delete(active, task.ID)
		}
		for _, shoot := range shoots {
			if s, ok := active[SmartTaskID(shoot.ID)]; ok {
				tasks = append(tasks, smartTaskFor(s))
				delete(active, SmartTaskID(shoot.ID))
			}
		}

		result[pi].Tasks = tasks
	}

	return result
}

func smartTaskFor(shoot Shoot) Task {
	return Task{
		ID:          SmartTaskID(shoot.ID),
		Name:        shoot.Title,
		Description: fmt.Sprintf("Shoot for %s at %s", shoot.ClientName, shoot.Location),
		Done:        false,
		DueDate:     shoot.EditDueDate,
		Subtasks:    []Subtask{},
		Attachments: []Attachment{},
		SmartTask:   true,
	}
}
