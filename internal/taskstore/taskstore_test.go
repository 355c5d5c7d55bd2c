package taskstore

import (
	"slices"
	"testing"
)

func TestSortByUrgency(t *testing.T) {
	tasks := []Task{
		{ID: 3, Urgency: 1},
		{ID: 1, Urgency: 4},
		{ID: 4, Urgency: 2},
		{ID: 2, Urgency: 2},
	}

	SortByUrgency(tasks)

	var got []int
	for _, task := range tasks {
		got = append(got, task.ID)
	}
	want := []int{1, 2, 4, 3}
	if !slices.Equal(got, want) {
		t.Errorf("SortByUrgency() order = %v, want %v", got, want)
	}
}

func TestIndexOf(t *testing.T) {
	tasks := []Task{{ID: 5}, {ID: 9}}
	if got := IndexOf(tasks, 9); got != 1 {
		t.Errorf("IndexOf(9) = %d, want 1", got)
	}
	if got := IndexOf(tasks, 7); got != -1 {
		t.Errorf("IndexOf(7) = %d, want -1", got)
	}
}

func TestRankKeyValue(t *testing.T) {
	if got := (Task{}).RankKeyValue(); got != 0 {
		t.Errorf("unset RankKeyValue() = %v, want 0", got)
	}
	v := 2.5
	if got := (Task{RankKey: &v}).RankKeyValue(); got != 2.5 {
		t.Errorf("RankKeyValue() = %v, want 2.5", got)
	}
}

func TestFilterMatchesProject(t *testing.T) {
	tests := []struct {
		filter  string
		project string
		want    bool
	}{
		{"", "anything", true},
		{"work", "work", true},
		{"work", "work.infra", true},
		{"work", "workshop", false},
		{"work.infra", "work", false},
	}

	for _, tt := range tests {
		f := Filter{Project: tt.filter}
		if got := f.MatchesProject(tt.project); got != tt.want {
			t.Errorf("Filter{%q}.MatchesProject(%q) = %v, want %v", tt.filter, tt.project, got, tt.want)
		}
	}
}

func TestRoundRankKey(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.5, 1.5},
		{1.234, 1.23},
		{1.236, 1.24},
		{-0.114, -0.11},
		{0.1 + 0.2, 0.3},
	}

	for _, tt := range tests {
		if got := RoundRankKey(tt.in); got != tt.want {
			t.Errorf("RoundRankKey(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCoefficientKeys(t *testing.T) {
	tests := []struct {
		in   float64
		want []string
	}{
		{1.5, []string{"1.5", "1.500000"}},
		{3, []string{"3", "3.000000"}},
		{-0.25, []string{"-0.25", "-0.250000"}},
		{0.123456, []string{"0.123456"}},
	}

	for _, tt := range tests {
		if got := CoefficientKeys(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("CoefficientKeys(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
