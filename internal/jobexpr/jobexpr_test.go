package jobexpr

import (
	"strings"
	"testing"
	"time"

	"github.com/me/jobq/pkg/model"
)

func testJobs() []model.Job {
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	processed := created.Add(time.Minute)
	return []model.Job{
		{ID: 1, Name: "build", Priority: 2, CreatedAt: created},
		{ID: 2, Name: "test", Priority: 5, CreatedAt: created},
		{ID: 3, Name: "deploy-prod", Priority: 9, CreatedAt: created, ProcessedAt: &processed},
	}
}

func ids(jobs []model.Job) []int64 {
	out := make([]int64, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []int64
	}{
		{"empty matches all", "", []int64{1, 2, 3}},
		{"whitespace matches all", "   ", []int64{1, 2, 3}},
		{"priority", "job.priority <= 5", []int64{1, 2}},
		{"band", `job.band === "low"`, []int64{3}},
		{"name prefix", `job.name.startsWith("de")`, []int64{3}},
		{"pending only", "job.processedAt === null", []int64{1, 2}},
		{"id", "job.id % 2 == 1", []int64{1, 3}},
		{"truthy number", "job.priority - 5", []int64{1, 3}},
		{"created at", `job.createdAt.startsWith("2026-05-01")`, []int64{1, 2, 3}},
		{"none", "false", []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Compile(tt.expr, 0)
			if err != nil {
				t.Fatalf("Compile(%q): %v", tt.expr, err)
			}
			got, err := f.Apply(testJobs())
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			gotIDs := ids(got)
			if len(gotIDs) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", gotIDs, tt.want)
			}
			for i := range gotIDs {
				if gotIDs[i] != tt.want[i] {
					t.Fatalf("ids = %v, want %v", gotIDs, tt.want)
				}
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	for _, expr := range []string{
		"job.priority <",
		"var x = 1; x",
		"1; 2",
	} {
		if _, err := Compile(expr, 0); err == nil {
			t.Errorf("Compile(%q) = nil error, want syntax error", expr)
		}
	}
}

func TestFilter_RuntimeError(t *testing.T) {
	f, err := Compile("job.missing.field", 0)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	_, err = f.Match(testJobs()[0])
	if err == nil {
		t.Fatal("Match = nil error, want TypeError")
	}
	if !strings.Contains(err.Error(), "job.missing.field") {
		t.Errorf("error %q should mention the expression", err)
	}

	if _, err := f.Apply(testJobs()); err == nil || !strings.Contains(err.Error(), "job 1") {
		t.Errorf("Apply error = %v, want it to name job 1", err)
	}
}

func TestFilter_Timeout(t *testing.T) {
	f, err := Compile("(function() { while (true) {} })()", 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	start := time.Now()
	_, err = f.Match(testJobs()[0])
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("Match error = %v, want timeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took %s", elapsed)
	}
}

func TestFilter_Accessors(t *testing.T) {
	f, _ := Compile("  job.priority > 1 ", 0)
	if f.Source() != "job.priority > 1" {
		t.Errorf("Source = %q", f.Source())
	}
	if f.MatchesAll() {
		t.Error("MatchesAll = true for a real expression")
	}
	empty, _ := Compile("", 0)
	if !empty.MatchesAll() {
		t.Error("MatchesAll = false for empty expression")
	}
}
