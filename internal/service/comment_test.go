package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/devdesk/internal/apperror"
	"github.com/sakif/devdesk/internal/logger"
	"github.com/sakif/devdesk/internal/markdown"
	"github.com/sakif/devdesk/internal/repository"
	"github.com/sakif/devdesk/internal/validation"
)

func TestCommentService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	notifier := NewNotifier(env.db, env.db, nil, logger.Discard())
	svc := NewCommentService(env.db, env.db, env.db, markdown.NewRenderer(), notifier, logger.Discard())

	owner := env.user(t, "owner@example.com")
	dev := env.user(t, "dev@example.com")
	outsider := env.user(t, "outsider@example.com")
	tk := env.ticket(t, env.project(t, owner.ID).ID, owner.ID, &dev.ID)

	c, err := svc.Create(ctx, dev.ID, tk.ID, validation.CreateCommentRequest{Content: "fixed in **main**"})
	require.NoError(t, err)
	assert.Equal(t, dev.ID, c.AuthorID)
	assert.Contains(t, c.ContentHTML, "<strong>main</strong>")

	_, err = svc.Create(ctx, outsider.ID, tk.ID, validation.CreateCommentRequest{Content: "hi"})
	requireKind(t, err, apperror.ErrNotFound)

	_, err = svc.Create(ctx, owner.ID, tk.ID, validation.CreateCommentRequest{Content: "  "})
	requireKind(t, err, apperror.ErrValidation)

	_, err = svc.Create(ctx, owner.ID, tk.ID, validation.CreateCommentRequest{Content: "thanks"})
	require.NoError(t, err)

	all, err := svc.List(ctx, owner.ID, tk.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, c.ID, all[0].ID, "comments are oldest first")
	assert.NotEmpty(t, all[1].ContentHTML)

	mine, err := svc.ListMine(ctx, dev.ID, tk.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	_, err = svc.List(ctx, outsider.ID, tk.ID)
	requireKind(t, err, apperror.ErrNotFound)

	// Only the creator (owner) heard about dev's comment; owner's own
	// comment notified nobody.
	notes, err := env.db.ListNotifications(ctx, owner.ID, repository.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	_, err = svc.Delete(ctx, owner.ID, tk.ID, c.ID)
	requireKind(t, err, apperror.ErrNotFound)
	deleted, err := svc.Delete(ctx, dev.ID, tk.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, deleted.ID)
}

func TestActivityService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewActivityService(env.db, env.db, env.db)

	owner := env.user(t, "owner@example.com")
	creator := env.user(t, "creator@example.com")
	outsider := env.user(t, "outsider@example.com")
	tk := env.ticket(t, env.project(t, owner.ID).ID, creator.ID, nil)

	a, err := svc.Create(ctx, creator.ID, tk.ID, validation.CreateActivityRequest{Action: "status_changed", Details: "open -> in_progress"})
	require.NoError(t, err)
	assert.Equal(t, "status_changed", a.Action)

	_, err = svc.Create(ctx, owner.ID, tk.ID, validation.CreateActivityRequest{})
	requireKind(t, err, apperror.ErrValidation)

	_, err = svc.Create(ctx, outsider.ID, tk.ID, validation.CreateActivityRequest{Action: "poke"})
	requireKind(t, err, apperror.ErrNotFound)

	_, err = svc.Create(ctx, owner.ID, tk.ID, validation.CreateActivityRequest{Action: "reviewed"})
	require.NoError(t, err)

	all, err := svc.List(ctx, owner.ID, tk.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.ListMine(ctx, owner.ID, tk.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "reviewed", mine[0].Action)

	_, err = svc.Delete(ctx, owner.ID, tk.ID, a.ID)
	requireKind(t, err, apperror.ErrNotFound)
	_, err = svc.Delete(ctx, creator.ID, tk.ID, a.ID)
	require.NoError(t, err)
}
