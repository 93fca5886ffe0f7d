package session

// Status is a transceiver's report on a single receive attempt.
type Status int

const (
	// StatusOver means part of a message arrived; call Receive again.
	StatusOver Status = iota
	// StatusOverAndOut means a full packet is in hand and ready to
	// deliver.
	StatusOverAndOut
	// StatusFail means the connection should be torn down.
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusOver:
		return "Over"
	case StatusOverAndOut:
		return "OverAndOut"
	case StatusFail:
		return "Fail"
	default:
		return "Status(?)"
	}
}
