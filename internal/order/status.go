package order

// Status is the order lifecycle state. The happy path moves strictly
// forward: pending -> paid -> delivered -> completed. cancelled and refunded
// are terminal alternates reachable from the middle of the path.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusDelivered Status = "delivered"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

// pending is reserved for deferred/invoice-style payment. Orders are created
// at paid today, but the map already admits the pending entry point.
var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusPaid: true, StatusCancelled: true},
	StatusPaid:      {StatusDelivered: true, StatusCancelled: true, StatusRefunded: true},
	StatusDelivered: {StatusCompleted: true, StatusRefunded: true},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusRefunded:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	return len(validNext[s]) == 0
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}
