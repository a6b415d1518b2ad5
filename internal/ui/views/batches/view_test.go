package batches_test

import (
	"strings"
	"testing"
	"time"

	pyrolysisdto "biochar/internal/modules/pyrolysis/dto"
	"biochar/internal/ui/views/batches"
)

func TestDetailMarkdownShowsCompletionFieldsOnlyWhenCompleted(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	active := pyrolysisdto.BatchOutput{ID: "b-1", Status: "in-progress", StartTime: start, InputQuantity: 100}
	md := batches.DetailMarkdown(active, "North", "Rice husk")
	if strings.Contains(md, "| Output |") || !strings.Contains(md, "in progress") {
		t.Fatalf("active batch rendered completion fields:\n%s", md)
	}

	done := active
	done.Status = "completed"
	done.EndTime = start.Add(3 * time.Hour)
	done.OutputQuantity = 62
	done.YieldPercent = 62
	done.PhotoRef = "c-1/abcd-kiln.jpg"
	md = batches.DetailMarkdown(done, "North", "Rice husk")
	for _, want := range []string{"# North", "| Output | 62 kg |", "| Yield | 62.0% |", "| Duration | 3h0m0s |", "c-1/abcd-kiln.jpg"} {
		if !strings.Contains(md, want) {
			t.Fatalf("missing %q in:\n%s", want, md)
		}
	}
}
