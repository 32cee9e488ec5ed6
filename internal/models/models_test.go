package models

import (
	"strings"
	"testing"
	"time"
)

func TestNewID_Format(t *testing.T) {
	id, err := NewID(PrefixBranch)
	if err != nil {
		t.Fatalf("NewID() error: %v", err)
	}
	if !strings.HasPrefix(id, "br-") {
		t.Errorf("ID %q missing br- prefix", id)
	}
	// br- (3 chars) + 5 hex chars = 8 total
	if len(id) != 8 {
		t.Errorf("ID length = %d, want 8; id = %q", len(id), id)
	}
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewID(PrefixTask)
		if err != nil {
			t.Fatalf("NewID() iteration %d: %v", i, err)
		}
		if seen[id] {
			t.Fatalf("duplicate ID %q on iteration %d", id, i)
		}
		seen[id] = true
	}
}

func TestValidCommitType(t *testing.T) {
	tests := []struct {
		typ  string
		want bool
	}{
		{CommitTaskComplete, true},
		{CommitLearning, true},
		{CommitReflection, true},
		{CommitMilestone, true},
		{"merge_conflict", false},
		{"", false},
		{"MILESTONE", false},
	}
	for _, tt := range tests {
		if got := ValidCommitType(tt.typ); got != tt.want {
			t.Errorf("ValidCommitType(%q) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestBranch_Flags(t *testing.T) {
	b := Branch{Status: StatusMaster}
	if !b.IsMaster() {
		t.Error("master branch should report IsMaster")
	}
	if b.Merged() {
		t.Error("branch without merged_at should not report Merged")
	}

	now := time.Now()
	b = Branch{Status: StatusCompleted, MergedAt: &now}
	if b.IsMaster() {
		t.Error("completed branch should not report IsMaster")
	}
	if !b.Merged() {
		t.Error("branch with merged_at should report Merged")
	}
}
