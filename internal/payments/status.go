package payments

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// pending -> pending only refreshes the stored gateway response.
var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusPending: true, StatusCompleted: true, StatusFailed: true, StatusCancelled: true},
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

func (s Status) Terminal() bool {
	return s.Valid() && len(validNext[s]) == 0
}
