package domain

import "time"

// MaintenanceState is the process-wide killswitch. Conceptually a singleton;
// the store enforces a single row.
type MaintenanceState struct {
	Enabled      bool
	Announcement string
	UpdatedBy    string
	UpdatedAt    time.Time
}
