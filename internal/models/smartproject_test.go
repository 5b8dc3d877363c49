package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncSmartProject(t *testing.T) {
	due := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	shoot := func(id string, exported bool) Shoot {
		return Shoot{
			ID:          id,
			Title:       "Shoot " + id,
			ClientName:  "Emma",
			Location:    "Hyde Park",
			EditDueDate: &due,
			Progress:    ShootProgress{ExportUpload: exported},
		}
	}

	t.Run("adds a task per active shoot", func(t *testing.T) {
		projects := []Project{{ID: "sp", Name: "Shoots", SmartProject: true}}

		result := SyncSmartProject(projects, []Shoot{shoot("s1", false), shoot("s2", false)})

		require.Len(t, result[0].Tasks, 2)
		assert.Equal(t, "task-shoot-s1", result[0].Tasks[0].ID)
		assert.Equal(t, "Shoot s1", result[0].Tasks[0].Name)
		assert.Equal(t, "Shoot for Emma at Hyde Park", result[0].Tasks[0].Description)
		assert.True(t, result[0].Tasks[0].SmartTask)
		assert.Equal(t, &due, result[0].Tasks[0].DueDate)
	})

	t.Run("removes tasks for exported and deleted shoots", func(t *testing.T) {
		projects := []Project{{
			ID:           "sp",
			SmartProject: true,
			Tasks: []Task{
				{ID: "task-shoot-s1", SmartTask: true},
				{ID: "task-shoot-gone", SmartTask: true},
			},
		}}

		result := SyncSmartProject(projects, []Shoot{shoot("s1", true)})

		assert.Empty(t, result[0].Tasks)
	})

	t.Run("keeps task order stable and refreshes fields", func(t *testing.T) {
		projects := []Project{{
			ID:           "sp",
			SmartProject: true,
			Tasks: []Task{
				{ID: "task-shoot-s2", Name: "stale", SmartTask: true},
				{ID: "task-shoot-s1", Name: "stale", SmartTask: true},
			},
		}}

		result := SyncSmartProject(projects, []Shoot{shoot("s1", false), shoot("s2", false), shoot("s3", false)})

		require.Len(t, result[0].Tasks, 3)
		// Existing entries keep their slots, new shoots append.
		assert.Equal(t, "task-shoot-s2", result[0].Tasks[0].ID)
		assert.Equal(t, "Shoot s2", result[0].Tasks[0].Name)
		assert.Equal(t, "task-shoot-s1", result[0].Tasks[1].ID)
		assert.Equal(t, "task-shoot-s3", result[0].Tasks[2].ID)
	})

	t.Run("ignores ordinary projects", func(t *testing.T) {
		projects := []Project{{ID: "p1", Tasks: []Task{{ID: "t1"}}}}

		result := SyncSmartProject(projects, []Shoot{shoot("s1", false)})

		require.Len(t, result[0].Tasks, 1)
		assert.Equal(t, "t1", result[0].Tasks[0].ID)
	})
}
