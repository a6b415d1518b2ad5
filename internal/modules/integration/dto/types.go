package dto

import "time"

type IntegrationInfo struct {
	Name    string
	Version string
	Enabled bool
	Binary  string
	Events  []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	HandshakeOK     bool
	Error           string
}

type BatchSnapshot struct {
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
}

type EventInput struct {
	Kind  string
	At    time.Time
	Batch BatchSnapshot
}

type DeliveryResult struct {
	Integration string
	Accepted    bool
	Reference   string
	Message     string
	Error       string
}
