package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/jwpark/cyclewatch/pkg/logger"
)

type testJob struct {
	name     string
	schedule string
	err      error
	ran      chan struct{}
}

func (j *testJob) Name() string     { return j.name }
func (j *testJob) Schedule() string { return j.schedule }

func (j *testJob) Run(ctx context.Context) error {
	select {
	case j.ran <- struct{}{}:
	default:
	}
	return j.err
}

func newTestJob(name string) *testJob {
	return &testJob{
		name:     name,
		schedule: "0 30 16 * * MON-FRI",
		ran:      make(chan struct{}, 1),
	}
}

func TestAddJob(t *testing.T) {
	s := New(logger.Nop())

	job := newTestJob("analysis_run")
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() error = %v", err)
	}

	jobs := s.GetAllJobs()
	if len(jobs) != 1 || jobs[0] != "analysis_run" {
		t.Errorf("Expected [analysis_run], got %v", jobs)
	}
}

func TestAddJob_Duplicate(t *testing.T) {
	s := New(logger.Nop())

	if err := s.AddJob(newTestJob("analysis_run")); err != nil {
		t.Fatalf("AddJob() error = %v", err)
	}
	if err := s.AddJob(newTestJob("analysis_run")); err == nil {
		t.Error("Expected error when adding duplicate job, got nil")
	}
}

func TestAddJob_InvalidSchedule(t *testing.T) {
	s := New(logger.Nop())

	job := newTestJob("broken")
	job.schedule = "not a cron spec"

	if err := s.AddJob(job); err == nil {
		t.Error("Expected error for invalid schedule, got nil")
	}
}

func TestRunJob_Unknown(t *testing.T) {
	s := New(logger.Nop())

	if err := s.RunJob("missing"); err == nil {
		t.Error("Expected error for unknown job, got nil")
	}
}

func TestRunJob_RecordsHistory(t *testing.T) {
	s := New(logger.Nop())

	job := newTestJob("analysis_run")
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() error = %v", err)
	}

	if err := s.RunJob("analysis_run"); err != nil {
		t.Fatalf("RunJob() error = %v", err)
	}

	select {
	case <-job.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("Job did not run")
	}

	// History is written after the job returns
	deadline := time.Now().Add(2 * time.Second)
	for {
		history, err := s.GetJobHistory("analysis_run")
		if err != nil {
			t.Fatalf("GetJobHistory() error = %v", err)
		}
		if len(history.Results) > 0 {
			if !history.Results[0].Success {
				t.Error("Expected successful job result")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Job result never recorded")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestJobHistory_Trimming(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: "analysis_run", Success: i%2 == 0})
	}

	if len(h.Results) != 100 {
		t.Errorf("Expected history capped at 100, got %d", len(h.Results))
	}
}

func TestJobHistory_SuccessRate(t *testing.T) {
	h := &JobHistory{}
	if rate := h.GetSuccessRate(); rate != 0.0 {
		t.Errorf("Expected 0.0 for empty history, got %f", rate)
	}

	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: false})
	h.AddResult(JobResult{Success: true})

	if rate := h.GetSuccessRate(); rate != 0.75 {
		t.Errorf("Expected success rate 0.75, got %f", rate)
	}
}

func TestGetJobStats(t *testing.T) {
	s := New(logger.Nop())

	job := newTestJob("analysis_run")
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() error = %v", err)
	}

	stats := s.GetJobStats()
	st, ok := stats["analysis_run"]
	if !ok {
		t.Fatal("Expected stats for analysis_run")
	}

	if st.Schedule != job.schedule {
		t.Errorf("Expected schedule %q, got %q", job.schedule, st.Schedule)
	}
	if st.TotalRuns != 0 {
		t.Errorf("Expected 0 runs, got %d", st.TotalRuns)
	}
}
