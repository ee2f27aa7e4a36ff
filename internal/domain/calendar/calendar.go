// Package calendar tracks the simulated day and when each contributor is free.
package calendar

// Calendar holds the current day and each contributor's next free day.
// A contributor is available on day D iff their free day is <= D.
type Calendar struct {
	day    int
	freeAt []int
}

// New returns a calendar at day 0 with n contributors all free.
func New(n int) *Calendar {
	return &Calendar{freeAt: make([]int, n)}
}

// Day returns the current day.
func (c *Calendar) Day() int { return c.day }

// Len returns the number of tracked contributors.
func (c *Calendar) Len() int { return len(c.freeAt) }

// FreeAt returns the day id becomes free.
func (c *Calendar) FreeAt(id int) int { return c.freeAt[id] }

// Available reports whether id is free on the current day.
func (c *Calendar) Available(id int) bool { return c.freeAt[id] <= c.day }

// Book marks id busy until the given day. Bookings never move a free day backwards.
func (c *Calendar) Book(id, until int) {
	if until > c.freeAt[id] {
		c.freeAt[id] = until
	}
}

// NextEvent returns the smallest free day strictly after the current day.
func (c *Calendar) NextEvent() (int, bool) {
	next, found := 0, false
	for _, t := range c.freeAt {
		if t > c.day && (!found || t < next) {
			next, found = t, true
		}
	}
	return next, found
}

// Advance moves the clock to the next free-day event. It reports false, and
// leaves the day unchanged, when nobody is busy beyond today.
func (c *Calendar) Advance() bool {
	next, ok := c.NextEvent()
	if !ok {
		return false
	}
	c.day = next
	return true
}

// Clone returns a deep copy.
func (c *Calendar) Clone() *Calendar {
	return &Calendar{day: c.day, freeAt: append([]int(nil), c.freeAt...)}
}
