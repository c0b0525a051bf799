// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/oliverandrich/taskboard/internal/models"
	"codeberg.org/oliverandrich/taskboard/internal/repository"
	"codeberg.org/oliverandrich/taskboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTask(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "alice@example.com", models.RoleUser)
	due := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	task := &models.Task{UserID: user.ID, Title: "File taxes", Description: "before April", DueDate: &due}
	require.NoError(t, repo.CreateTask(ctx, task))

	stored, err := repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "File taxes", stored.Title)
	assert.Equal(t, models.StatusToDo, stored.Status)
	assert.False(t, stored.IsHidden)
	require.NotNil(t, stored.DueDate)
	assert.True(t, due.Equal(*stored.DueDate))
	assert.Empty(t, stored.Tags)
}

func TestGetTask_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetTask(context.Background(), 42)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListTasks_Filters(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	alice := testutil.NewTestUser(t, repo, "alice@example.com", models.RoleUser)
	bob := testutil.NewTestUser(t, repo, "bob@example.com", models.RoleUser)

	todo := testutil.NewTestTask(t, repo, alice.ID, "todo")
	doing := testutil.NewTestTask(t, repo, alice.ID, "doing")
	doing.Status = models.StatusInProgress
	require.NoError(t, repo.UpdateTask(ctx, doing))
	doneVisible := testutil.NewTestTask(t, repo, alice.ID, "done visible")
	doneVisible.Status = models.StatusDone
	require.NoError(t, repo.UpdateTask(ctx, doneVisible))
	doneHidden := testutil.NewTestTask(t, repo, alice.ID, "done hidden")
	doneHidden.Status = models.StatusDone
	doneHidden.IsHidden = true
	require.NoError(t, repo.UpdateTask(ctx, doneHidden))
	testutil.NewTestTask(t, repo, bob.ID, "not alice's")

	ids := func(tasks []models.Task) []int64 {
		out := make([]int64, 0, len(tasks))
		for _, task := range tasks {
			out = append(out, task.ID)
		}
		return out
	}

	t.Run("default hides hidden completed tasks", func(t *testing.T) {
		tasks, err := repo.ListTasks(ctx, repository.TaskFilter{UserID: alice.ID})
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{todo.ID, doing.ID, doneVisible.ID}, ids(tasks))
	})

	t.Run("show completed includes hidden", func(t *testing.T) {
		tasks, err := repo.ListTasks(ctx, repository.TaskFilter{UserID: alice.ID, ShowCompleted: true})
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{todo.ID, doing.ID, doneVisible.ID, doneHidden.ID}, ids(tasks))
	})

	t.Run("status filter", func(t *testing.T) {
		status := models.StatusDone
		tasks, err := repo.ListTasks(ctx, repository.TaskFilter{UserID: alice.ID, Status: &status})
		require.NoError(t, err)
		assert.Equal(t, []int64{doneVisible.ID}, ids(tasks))
	})

	t.Run("newest first", func(t *testing.T) {
		tasks, err := repo.ListTasks(ctx, repository.TaskFilter{UserID: alice.ID, ShowCompleted: true})
		require.NoError(t, err)
		assert.Equal(t, doneHidden.ID, tasks[0].ID)
		assert.Equal(t, todo.ID, tasks[len(tasks)-1].ID)
	})
}

func TestSetTaskTags(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "alice@example.com", models.RoleUser)
	task := testutil.NewTestTask(t, repo, user.ID, "tagged")
	urgent := testutil.NewTestTag(t, repo, 0, "Urgent")
	home := testutil.NewTestTag(t, repo, user.ID, "home")
	work := testutil.NewTestTag(t, repo, user.ID, "work")

	require.NoError(t, repo.SetTaskTags(ctx, task.ID, []int64{home.ID, urgent.ID}))

	stored, err := repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, stored.Tags, 2)
	assert.Equal(t, "Urgent", stored.Tags[0].Name, "system tags come first")
	assert.Equal(t, "home", stored.Tags[1].Name)

	require.NoError(t, repo.SetTaskTags(ctx, task.ID, []int64{work.ID, work.ID}))

	stored, err = repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, stored.Tags, 1)
	assert.Equal(t, work.ID, stored.Tags[0].ID)
}

func TestDeleteTask(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "alice@example.com", models.RoleUser)
	task := testutil.NewTestTask(t, repo, user.ID, "gone")
	tag := testutil.NewTestTag(t, repo, user.ID, "x")
	require.NoError(t, repo.SetTaskTags(ctx, task.ID, []int64{tag.ID}))

	require.NoError(t, repo.DeleteTask(ctx, task.ID))

	_, err := repo.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteTask(ctx, task.ID), repository.ErrNotFound)

	_, err = repo.GetTag(ctx, tag.ID)
	assert.NoError(t, err, "deleting a task keeps its tags")
}

func TestCountTasks(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	user := testutil.NewTestUser(t, repo, "alice@example.com", models.RoleUser)
	testutil.NewTestTask(t, repo, user.ID, "a")
	testutil.NewTestTask(t, repo, user.ID, "b")

	count, err := repo.CountTasks(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
