package domain_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"biochar/internal/modules/pyrolysis/domain"
	apperrors "biochar/internal/platform/errors"
)

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func active(id string, start time.Time) domain.ActiveBatch {
	b, err := domain.NewActive(id, domain.StartParams{CoordinatorID: "north", KilnID: "K1", BiomassTypeID: "wood", InputQuantity: 100}, start)
	if err != nil {
		panic(err)
	}
	return b
}

func TestStartParamsValidate(t *testing.T) {
	t.Parallel()
	cases := []domain.StartParams{
		{KilnID: "K1", BiomassTypeID: "wood", InputQuantity: 1},
		{CoordinatorID: "c", BiomassTypeID: "wood", InputQuantity: 1},
		{CoordinatorID: "c", KilnID: "K1", InputQuantity: 1},
		{CoordinatorID: "c", KilnID: "K1", BiomassTypeID: "wood"},
		{CoordinatorID: "c", KilnID: "K1", BiomassTypeID: "wood", InputQuantity: -5},
		{CoordinatorID: "c", KilnID: "K1", BiomassTypeID: "wood", InputQuantity: math.Inf(1)},
		{CoordinatorID: "c", KilnID: "K1", BiomassTypeID: "wood", InputQuantity: math.NaN()},
	}
	for _, tc := range cases {
		if err := tc.Validate(); !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", tc, err)
		}
	}
}

func TestEndParamsValidate(t *testing.T) {
	t.Parallel()
	ok := domain.EndParams{CoordinatorID: "c", OutputQuantity: 62, Photo: []byte{1}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}
	zero := ok
	zero.OutputQuantity = 0
	if err := zero.Validate(); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("zero output should fail, got %v", err)
	}
	for _, q := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		bad := ok
		bad.OutputQuantity = q
		if err := bad.Validate(); !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("output %v should fail, got %v", q, err)
		}
		if _, err := active("b-inf", t0).Complete(domain.Completion{EndTime: t0.Add(time.Hour), OutputQuantity: q, PhotoRef: "p.jpg"}); !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("completing with output %v should fail, got %v", q, err)
		}
	}
	noPhoto := ok
	noPhoto.Photo = nil
	if err := noPhoto.Validate(); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("missing photo should fail, got %v", err)
	}
}

func TestCompleteFreezesStartFields(t *testing.T) {
	t.Parallel()
	a := active("b1", t0)
	done, err := a.Complete(domain.Completion{EndTime: t0.Add(3 * time.Hour), OutputQuantity: 62, PhotoRef: "north/abc.jpg"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Fields() != a.Fields() {
		t.Fatalf("start fields changed: %+v vs %+v", done.Fields(), a.Fields())
	}
	if done.Status() != domain.StatusCompleted || done.Yield() != 62 {
		t.Fatalf("unexpected completed batch %+v", done)
	}
	if _, err := a.Complete(domain.Completion{EndTime: t0, OutputQuantity: 1}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("missing photo ref should fail, got %v", err)
	}
}

func TestActiveOfAndStateOf(t *testing.T) {
	t.Parallel()
	done, _ := active("b1", t0).Complete(domain.Completion{EndTime: t0.Add(time.Hour), OutputQuantity: 10, PhotoRef: "p"})

	state, err := domain.StateOf([]domain.Batch{done})
	if err != nil || state != domain.Idle {
		t.Fatalf("expected idle, got %v %v", state, err)
	}
	current := active("b2", t0.Add(2*time.Hour))
	got, ok, err := domain.ActiveOf([]domain.Batch{done, current})
	if err != nil || !ok || got.ID != "b2" {
		t.Fatalf("expected b2 active, got %+v %v %v", got, ok, err)
	}
	if _, _, err := domain.ActiveOf([]domain.Batch{current, active("b3", t0)}); !errors.Is(err, apperrors.ErrInvariantViolated) {
		t.Fatalf("two active batches should be reported, got %v", err)
	}
}

func TestHistorySortsNewestFirstRegardlessOfInput(t *testing.T) {
	t.Parallel()
	t1 := active("a", t0)
	t2, _ := active("b", t0.Add(time.Hour)).Complete(domain.Completion{EndTime: t0.Add(2 * time.Hour), OutputQuantity: 5, PhotoRef: "p"})
	t3 := active("c", t0.Add(3*time.Hour))
	tie := active("d", t0)

	orders := [][]domain.Batch{
		{t1, t2, t3, tie},
		{t3, tie, t1, t2},
		{tie, t2, t3, t1},
	}
	for _, in := range orders {
		got := domain.History(in)
		want := []string{"c", "b", "d", "a"}
		for i, b := range got {
			if b.Fields().ID != want[i] {
				t.Fatalf("history order %v, want %v", ids(got), want)
			}
		}
	}
}

func TestDecodeRejectsMismatchedRows(t *testing.T) {
	t.Parallel()
	end := t0.Add(time.Hour)
	out := 12.5
	photo := "p"

	halfDone := domain.Record{ID: "x", Status: domain.StatusInProgress, EndTime: &end}
	if _, err := domain.Decode(halfDone); !errors.Is(err, apperrors.ErrInvariantViolated) {
		t.Fatalf("in-progress with end time should be rejected, got %v", err)
	}
	missing := domain.Record{ID: "y", Status: domain.StatusCompleted, EndTime: &end, OutputQuantity: &out}
	if _, err := domain.Decode(missing); !errors.Is(err, apperrors.ErrInvariantViolated) {
		t.Fatalf("completed without photo should be rejected, got %v", err)
	}
	unknown := domain.Record{ID: "z", Status: "paused"}
	if _, err := domain.Decode(unknown); !errors.Is(err, apperrors.ErrInvariantViolated) {
		t.Fatalf("unknown status should be rejected, got %v", err)
	}

	full := domain.Record{ID: "w", CoordinatorID: "north", StartTime: t0, InputQuantity: 20, Status: domain.StatusCompleted, EndTime: &end, OutputQuantity: &out, PhotoRef: &photo}
	batch, err := domain.Decode(full)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	back := domain.Encode(batch)
	if back.Status != domain.StatusCompleted || *back.OutputQuantity != out || !back.EndTime.Equal(end) || *back.PhotoRef != photo {
		t.Fatalf("encode mismatch %+v", back)
	}
}

func ids(batches []domain.Batch) []string {
	out := make([]string, 0, len(batches))
	for _, b := range batches {
		out = append(out, b.Fields().ID)
	}
	return out
}
