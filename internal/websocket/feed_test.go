package websocket

import (
	"io"
	"log/slog"
	"testing"

	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/state"
)

func TestActionMessage(t *testing.T) {
	snap := model.Snapshot{
		Tasks:   []model.Task{{ID: 3}, {ID: 9}},
		Classes: []model.ClassSession{{ID: 4}},
		Exams:   []model.Exam{{ID: 2}},
	}

	tests := []struct {
		name     string
		action   state.Action
		wantType string
		wantID   int64
	}{
		{"replace", nil, "snapshot_replaced", 0},
		{"add task", state.AddTask{}, "task_created", 9},
		{"toggle task", state.ToggleTask{ID: 3}, "task_toggled", 3},
		{"add class", state.AddClass{}, "class_created", 4},
		{"add exam", state.AddExam{}, "exam_created", 2},
		{"delete exam", state.DeleteExam{ID: 2}, "exam_deleted", 2},
		{"subtask", state.ToggleSubtask{TaskID: 3, SubtaskID: 1}, "subtask_toggled", 3},
		{"read all", state.MarkAllNotificationsRead{}, "notification_read_all", 0},
		{"sync", state.ApplySync{}, "sync_applied", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := ActionMessage(tt.action, snap)
			if !ok {
				t.Fatal("expected a message")
			}
			if msg.Type != tt.wantType {
				t.Errorf("type = %q, want %q", msg.Type, tt.wantType)
			}
			if msg.ID != tt.wantID {
				t.Errorf("id = %d, want %d", msg.ID, tt.wantID)
			}
		})
	}
}

func TestActionMessageSkipsRefresh(t *testing.T) {
	if _, ok := ActionMessage(state.RefreshPriorities{}, model.Snapshot{}); ok {
		t.Error("priority refresh should not be broadcast")
	}
}

func TestListenFromContainer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub(logger)
	c := mockClient(hub)
	hub.Register(c)
	defer hub.Unregister(c)
	recv(t, c)

	planner := state.NewContainer(nil, logger)
	planner.Subscribe(hub.Listen)

	if _, err := planner.Dispatch(state.AddExam{Exam: model.Exam{Subject: "Química", Date: "2026-03-02", Time: "10:00"}}); err != nil {
		t.Fatalf("add exam: %v", err)
	}

	if got := recv(t, c); got.Type != "exam_created" || got.ID != 3 {
		t.Errorf("got %+v", got)
	}
}
