package dto

import "time"

type StartInput struct {
	KilnID        string
	BiomassTypeID string
	InputQuantity float64
}

type EndInput struct {
	// BatchID is optional; when set it must name the active batch.
	BatchID        string
	OutputQuantity float64
	PhotoName      string
	Photo          []byte
}

type HistoryInput struct {
	CoordinatorID string
}

type BatchOutput struct {
	ID             string
	CoordinatorID  string
	KilnID         string
	BiomassTypeID  string
	Status         string
	StartTime      time.Time
	InputQuantity  float64
	EndTime        time.Time
	OutputQuantity float64
	PhotoRef       string
	YieldPercent   float64
}

func (b BatchOutput) Completed() bool { return b.Status == "completed" }

type StartOutput struct {
	Batch    BatchOutput
	Warnings []string
}

type EndOutput struct {
	Batch       BatchOutput
	JournalPath string
	Warnings    []string
}
