package dashboard

import (
	"fmt"
	"time"
)

// RefreshInterval is how often the dashboard refetches trends
const RefreshInterval = 35 * time.Minute

// Countdown tracks the seconds left until the next refresh
type Countdown struct {
	remaining int
}

func NewCountdown() *Countdown {
	return &Countdown{remaining: int(RefreshInterval.Seconds())}
}

// Tick advances one second. It wraps back to the full interval once one
// second or less is left and reports whether it wrapped.
func (c *Countdown) Tick() bool {
	if c.remaining <= 1 {
		c.Reset()
		return true
	}
	c.remaining--
	return false
}

func (c *Countdown) Reset() {
	c.remaining = int(RefreshInterval.Seconds())
}

func (c *Countdown) Remaining() int {
	return c.remaining
}

// Format renders the remaining time as m:ss
func (c *Countdown) Format() string {
	return fmt.Sprintf("%d:%02d", c.remaining/60, c.remaining%60)
}
