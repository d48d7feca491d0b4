package shared

// MarketStatus represents the trading state of an exchange's regular session.
type MarketStatus int

const (
	StatusUnknown MarketStatus = iota
	StatusOpen
	StatusClosed
)

// String stringifies the provided market status.
func (s MarketStatus) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}
