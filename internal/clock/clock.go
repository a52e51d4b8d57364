package clock

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// Gate decides whether the exchange session is open. It only looks at the
// local time of day; holidays and weekends are not modelled.
type Gate struct {
	loc    *time.Location
	open   time.Duration
	close  time.Duration
	Bypass bool
}

// New builds a gate for the given IANA zone and "HH:MM" session bounds.
func New(timezone, open, close string, bypass bool) (*Gate, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	o, err := parseClock(open)
	if err != nil {
		return nil, fmt.Errorf("session open: %w", err)
	}
	c, err := parseClock(close)
	if err != nil {
		return nil, fmt.Errorf("session close: %w", err)
	}
	if c <= o {
		return nil, fmt.Errorf("session close %s must be after open %s", close, open)
	}
	return &Gate{loc: loc, open: o, close: c, Bypass: bypass}, nil
}

// NewUS is the NYSE/Nasdaq regular session, 09:30 to 16:00 Eastern.
func NewUS(bypass bool) *Gate {
	g, err := New("America/New_York", "09:30", "16:00", bypass)
	if err != nil {
		panic(err)
	}
	return g
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%q is not HH:MM", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// IsTradeable reports whether now falls in [open, close) in the exchange zone.
func (g *Gate) IsTradeable(now time.Time) bool {
	if g.Bypass {
		return true
	}
	local := now.In(g.loc)
	tod := time.Duration(local.Hour())*time.Hour +
		time.Duration(local.Minute())*time.Minute +
		time.Duration(local.Second())*time.Second +
		time.Duration(local.Nanosecond())
	return tod >= g.open && tod < g.close
}

// Location is the exchange time zone.
func (g *Gate) Location() *time.Location {
	return g.loc
}
