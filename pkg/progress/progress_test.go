package progress

import (
	"sync"
	"testing"
)

func TestTrackerLifecycle(t *testing.T) {
	tr := NewTracker()
	tr.CreateTask("dl", 10, "downloading")

	tr.UpdateTask("dl", 4)
	task, ok := tr.Task("dl")
	if !ok || task.Current != 4 || task.Percentage() != 40 {
		t.Fatalf("after update: %+v ok=%v", task, ok)
	}

	tr.IncrementTask("dl", 100)
	task, _ = tr.Task("dl")
	if task.Current != 10 {
		t.Fatalf("increment should cap at total, got %d", task.Current)
	}

	tr.CompleteTask("dl", true, "")
	task, _ = tr.Task("dl")
	if task.Status != StatusCompleted || task.Percentage() != 100 {
		t.Fatalf("after complete: %+v", task)
	}
}

func TestTrackerCancelledStatus(t *testing.T) {
	tr := NewTracker()
	tr.CreateTask("dl", 5, "downloading")
	tr.CompleteTask("dl", false, "cancelled")
	task, _ := tr.Task("dl")
	if task.Status != StatusCancelled {
		t.Fatalf("status = %s, want cancelled", task.Status)
	}
}

func TestTrackerUnknownTaskIgnored(t *testing.T) {
	tr := NewTracker()
	tr.UpdateTask("nope", 3)
	tr.CompleteTask("nope", true, "")
	if len(tr.Tasks()) != 0 {
		t.Fatalf("expected no tasks")
	}
}

func TestTrackerConcurrentUpdates(t *testing.T) {
	tr := NewTracker()
	tr.CreateTask("fan", 1000, "fan-out")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.IncrementTask("fan", 1)
			}
		}()
	}
	wg.Wait()

	task, _ := tr.Task("fan")
	if task.Current != 1000 {
		t.Fatalf("current = %d, want 1000", task.Current)
	}
}

func TestClearFinished(t *testing.T) {
	tr := NewTracker()
	tr.CreateTask("a", 1, "")
	tr.CreateTask("b", 1, "")
	tr.CompleteTask("a", true, "")
	tr.ClearFinished()
	if _, ok := tr.Task("a"); ok {
		t.Fatalf("finished task should be cleared")
	}
	if _, ok := tr.Task("b"); !ok {
		t.Fatalf("in-progress task should remain")
	}
}
