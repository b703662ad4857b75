package websocket

import (
	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/state"
)

// ActionMessage describes a committed planner transition for clients.
// Creates carry the id the reducer assigned, read from the snapshot.
// It returns false for transitions clients do not need to hear about.
func ActionMessage(a state.Action, s model.Snapshot) (Message, bool) {
	switch a := a.(type) {
	case nil:
		return NewMessage("snapshot", "replaced", 0, nil), true
	case state.AddTask:
		return NewMessage("task", "created", lastTaskID(s), nil), true
	case state.UpdateTask:
		return NewMessage("task", "updated", a.Task.ID, nil), true
	case state.DeleteTask:
		return NewMessage("task", "deleted", a.ID, nil), true
	case state.ToggleTask:
		return NewMessage("task", "toggled", a.ID, nil), true
	case state.LockPriority:
		return NewMessage("task", "locked", a.ID, map[string]any{"priority": a.Level}), true
	case state.UnlockPriority:
		return NewMessage("task", "unlocked", a.ID, nil), true
	case state.AddSubtask:
		return NewMessage("subtask", "created", a.TaskID, nil), true
	case state.UpdateSubtask:
		return NewMessage("subtask", "updated", a.TaskID, map[string]any{"subtask_id": a.SubtaskID}), true
	case state.DeleteSubtask:
		return NewMessage("subtask", "deleted", a.TaskID, map[string]any{"subtask_id": a.SubtaskID}), true
	case state.ToggleSubtask:
		return NewMessage("subtask", "toggled", a.TaskID, map[string]any{"subtask_id": a.SubtaskID}), true
	case state.AddClass:
		var id int64
		if n := len(s.Classes); n > 0 {
			id = s.Classes[n-1].ID
		}
		return NewMessage("class", "created", id, nil), true
	case state.UpdateClass:
		return NewMessage("class", "updated", a.Class.ID, nil), true
	case state.DeleteClass:
		return NewMessage("class", "deleted", a.ID, nil), true
	case state.ToggleClass:
		return NewMessage("class", "toggled", a.ID, nil), true
	case state.AddExam:
		var id int64
		if n := len(s.Exams); n > 0 {
			id = s.Exams[n-1].ID
		}
		return NewMessage("exam", "created", id, nil), true
	case state.UpdateExam:
		return NewMessage("exam", "updated", a.Exam.ID, nil), true
	case state.DeleteExam:
		return NewMessage("exam", "deleted", a.ID, nil), true
	case state.ToggleExam:
		return NewMessage("exam", "toggled", a.ID, nil), true
	case state.AddNotifications:
		return NewMessage("notification", "created", 0, map[string]any{"count": len(a.Notifications)}), true
	case state.MarkNotificationRead:
		return NewMessage("notification", "read", 0, map[string]any{"notification_id": a.ID}), true
	case state.MarkAllNotificationsRead:
		return NewMessage("notification", "read_all", 0, nil), true
	case state.DeleteNotification:
		return NewMessage("notification", "deleted", 0, map[string]any{"notification_id": a.ID}), true
	case state.JoinChallenge:
		return NewMessage("challenge", "joined", a.ID, nil), true
	case state.EvaluateChallenges:
		return NewMessage("challenge", "evaluated", 0, nil), true
	case state.EarnBadge:
		return NewMessage("badge", "earned", 0, map[string]any{"name": a.Name}), true
	case state.UpdateSettings:
		return NewMessage("settings", "updated", 0, nil), true
	case state.SetUserType:
		return NewMessage("user", "updated", 0, map[string]any{"type": a.Type}), true
	case state.ApplySync:
		return NewMessage("sync", "applied", 0, map[string]any{"fetched": len(a.Fetched)}), true
	case state.RecordSubmission:
		return NewMessage("submission", "recorded", a.Submission.TaskID, map[string]any{"student": a.Submission.Student}), true
	}
	// RefreshPriorities runs on every scheduler pass.
	return Message{}, false
}

func lastTaskID(s model.Snapshot) int64 {
	if n := len(s.Tasks); n > 0 {
		return s.Tasks[n-1].ID
	}
	return 0
}

// Listen broadcasts committed transitions. It matches state.Listener.
func (h *Hub) Listen(a state.Action, s model.Snapshot) {
	if msg, ok := ActionMessage(a, s); ok {
		h.Broadcast(msg)
	}
}
