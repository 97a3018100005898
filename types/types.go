package types

type Status int32

const (
	None      Status = 0
	Pending   Status = 1
	Running   Status = 2
	Success   Status = 3
	Failed    Status = 4
	Skipped   Status = 5
	Cancelled Status = 6
)

var statusNames = map[Status]string{
	None:      "none",
	Pending:   "pending",
	Running:   "running",
	Success:   "success",
	Failed:    "failed",
	Skipped:   "skipped",
	Cancelled: "cancelled",
}

func (s Status) String() string {
	if name, exists := statusNames[s]; exists {
		return name
	}
	return "unknown"
}

/**
 * Terminal reports whether a node or run in this status will never
 * change status again.
 */
func (s Status) Terminal() bool {
	switch s {
	case Success, Failed, Skipped, Cancelled:
		return true
	}
	return false
}
