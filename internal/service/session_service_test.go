package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/oskarkuder/lesson-notes-ai/internal/errors"
	"github.com/oskarkuder/lesson-notes-ai/internal/model"
	"github.com/oskarkuder/lesson-notes-ai/internal/session"
)

func TestSessionService_ClampLimit(t *testing.T) {
	svc := NewSessionService(session.NewManager(testGenerator()), new(MockNoteRepository), 600).(*sessionService)

	free := &model.User{ID: 1, Plan: model.PlanFree}
	pro := &model.User{ID: 2, Plan: model.PlanPro}

	tests := []struct {
		name  string
		user  *model.User
		limit int
		want  int
	}{
		{"guest unlimited is capped", nil, 0, 600},
		{"guest over cap is capped", nil, 3600, 600},
		{"guest under cap keeps choice", nil, 300, 300},
		{"free unlimited is capped", free, 0, 600},
		{"free over cap is capped", free, 1200, 600},
		{"pro keeps unlimited", pro, 0, 0},
		{"pro keeps long limit", pro, 7200, 7200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.clampLimit(tt.user, tt.limit))
		})
	}
}

func TestSessionService_CreateDefaults(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(session.NewManager(testGenerator()), new(MockNoteRepository), 600)

	snap, err := svc.Create(ctx, nil, "", 0)
	require.NoError(t, err)
	assert.Equal(t, session.PhaseIdle, snap.Phase)
	assert.Equal(t, "auto", snap.Language)
	assert.Equal(t, 600, snap.Limit)
}

func TestSessionService_HistoryRequiresLogin(t *testing.T) {
	ctx := context.Background()
	manager := session.NewManager(testGenerator())
	notes := new(MockNoteRepository)
	svc := NewSessionService(manager, notes, 600)

	snap, err := svc.Create(ctx, nil, "auto", 0)
	require.NoError(t, err)

	_, err = svc.History(ctx, snap.ID, false)
	assert.ErrorIs(t, err, apperr.ErrLoginRequired)

	// Guard fires before any state change.
	after, err := svc.Snapshot(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, session.PhaseIdle, after.Phase)
}

func TestSessionService_HistoryHydratesNotes(t *testing.T) {
	ctx := context.Background()
	manager := session.NewManager(testGenerator())
	notes := new(MockNoteRepository)
	svc := NewSessionService(manager, notes, 600)

	user := &model.User{ID: 4}
	snap, err := svc.Create(ctx, user, "auto", 0)
	require.NoError(t, err)

	stored := []model.Note{{ID: 2, UserID: 4, CreatedAt: 200}, {ID: 1, UserID: 4, CreatedAt: 100}}
	notes.On("ListByUser", ctx, uint(4)).Return(stored, nil)

	list, err := svc.History(ctx, snap.ID, false)
	require.NoError(t, err)
	assert.Equal(t, stored, list)

	after, err := svc.Snapshot(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, session.PhaseHistory, after.Phase)
}

func TestSessionService_LoadBringsNoteIntoSession(t *testing.T) {
	ctx := context.Background()
	manager := session.NewManager(testGenerator())
	notes := new(MockNoteRepository)
	svc := NewSessionService(manager, notes, 600)

	user := &model.User{ID: 4}
	snap, err := svc.Create(ctx, user, "auto", 0)
	require.NoError(t, err)

	note := &model.Note{ID: 9, UserID: 4, Title: "Saved", AudioMIME: "audio/webm", CreatedAt: 100}
	notes.On("GetWithAudio", ctx, uint(9), uint(4)).Return(note, []byte("blob"), nil)

	require.NoError(t, svc.Load(ctx, snap.ID, 9, false))

	after, err := svc.Snapshot(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, session.PhaseSuccess, after.Phase)
	assert.True(t, after.Saved)
	assert.Equal(t, "Saved", after.Note.Title)

	// Ownership failures pass through untouched.
	notes.On("GetWithAudio", ctx, uint(11), uint(4)).Return(nil, nil, apperr.ErrNoteNotFound)
	assert.ErrorIs(t, svc.Load(ctx, snap.ID, 11, true), apperr.ErrNoteNotFound)
}
