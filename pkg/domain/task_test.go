package domain

import "testing"

func TestValidStatus(t *testing.T) {
	for _, s := range ValidStatuses {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "TODO", "archived"} {
		if ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = true, want false", s)
		}
	}
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"todo", "doing"},
		{"doing", "done"},
		{"done", "todo"},
		{"bogus", "todo"},
		{"", "todo"},
	}
	for _, tc := range tests {
		if got := NextStatus(tc.in); got != tc.want {
			t.Errorf("NextStatus(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAssignedTo(t *testing.T) {
	id := int64(7)
	task := Task{AssigneeID: &id}
	if !task.Assigned() {
		t.Error("Assigned() = false, want true")
	}
	if !task.AssignedTo(7) {
		t.Error("AssignedTo(7) = false, want true")
	}
	if task.AssignedTo(8) {
		t.Error("AssignedTo(8) = true, want false")
	}

	var unassigned Task
	if unassigned.Assigned() {
		t.Error("Assigned() on unassigned task = true, want false")
	}
	if unassigned.AssignedTo(7) {
		t.Error("AssignedTo on unassigned task = true, want false")
	}
}
