// Package models defines the JSON documents Dopamine persists in the KV
// store. Field names follow the wire format the web client reads and writes,
// so tags are camelCase and date fields serialize as ISO 8601 strings.
package models

import "time"

// AppState is the full client-owned document, stored as one JSON blob under
// the "state" key. It is the single source of truth for projects and shoots.
type AppState struct {
	Projects []Project `json:"projects"`
	Shoots   []Shoot   `json:"shoots"`
}

type Project struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Priority     string  `json:"priority,omitempty"`
	DueDate      string  `json:"dueDate,omitempty"`
	Progress     float64 `json:"progress"`
	SmartProject bool    `json:"smartProject,omitempty"`
	Tasks        []Task  `json:"tasks"`
}

type Task struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Done        bool         `json:"isDone"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	Subtasks    []Subtask    `json:"subtasks"`
	Attachments []Attachment `json:"attachments"`
	SmartTask   bool         `json:"isSmartTask,omitempty"`
}

type Subtask struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Done  bool   `json:"isDone"`
}

// Attachment is an image, audio note, or file linked to a task or shoot.
type Attachment struct {
	ID       string `json:"id"`
	Type     string `json:"type,omitempty"`
	URL      string `json:"url"`
	Label    string `json:"label,omitempty"`
	Alt      string `json:"alt,omitempty"`
	Duration string `json:"duration,omitempty"`
}
