package tui

import (
	"ezswitch/config/models"
	"ezswitch/internal/engine"
)

// StartupMsg is sent once the environment has been read at startup
type StartupMsg struct {
	Snapshot  models.EnvSnapshot
	Status    engine.Status
	Prefilled bool
	Err       error
}

// StatusChangedMsg carries engine.Events.StatusChanged into the program
type StatusChangedMsg struct {
	Status engine.Status
}

// ApplyResultMsg carries engine.Events.ApplyResult into the program
type ApplyResultMsg struct {
	Result engine.ApplyResult
}

// OperationDoneMsg is sent when a background apply or refresh finishes
type OperationDoneMsg struct {
	Refresh bool
	Result  engine.ApplyResult
}
