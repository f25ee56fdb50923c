package query

// Page bounds for list queries
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Page is a limit/offset window
type Page struct {
	Limit  int
	Offset int
}

// normalize applies the default and maximum limit
func (p Page) normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
