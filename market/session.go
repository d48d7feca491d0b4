package market

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dnldd/stocks/shared"
	"github.com/guregu/null/v6"
	"github.com/rs/zerolog"
)

const (
	secondsPerDay = 24 * 60 * 60
)

// SessionState represents the last known exchange session metadata. Fields are only
// ever overwritten with resolved values, never cleared.
type SessionState struct {
	// TimezoneName is the IANA timezone name of the exchange.
	TimezoneName null.String
	// GMTOffset is the exchange offset from UTC in seconds.
	GMTOffset null.Int
	// RegularOpen is the regular session open in seconds since local midnight.
	RegularOpen null.Int
	// RegularClose is the regular session close in seconds since local midnight.
	RegularClose null.Int
}

// FormatOpen renders the regular session open as a local time of day.
func (s *SessionState) FormatOpen() string {
	return formatTimeOfDay(s.RegularOpen)
}

// FormatClose renders the regular session close as a local time of day.
func (s *SessionState) FormatClose() string {
	return formatTimeOfDay(s.RegularClose)
}

// formatTimeOfDay renders the provided seconds since midnight using the session layout.
func formatTimeOfDay(secs null.Int) string {
	if !secs.Valid {
		return ""
	}

	return time.Date(0, time.January, 1, 0, 0, int(secs.Int64), 0, time.UTC).
		Format(shared.TimeOfDayLayout)
}

// SessionClockConfig represents the configuration of a session clock.
type SessionClockConfig struct {
	// Now returns the current time.
	Now func() time.Time
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *SessionClockConfig) Validate() error {
	var errs error

	if cfg.Now == nil {
		errs = errors.Join(errs, fmt.Errorf("clock cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// SessionClock tracks an exchange's regular trading session and classifies the market
// as open or closed.
type SessionClock struct {
	cfg   *SessionClockConfig
	state SessionState
	mtx   sync.RWMutex
}

// NewSessionClock initializes a new session clock.
func NewSessionClock(cfg *SessionClockConfig) (*SessionClock, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating session clock config: %w", err)
	}

	return &SessionClock{cfg: cfg}, nil
}

// resolveLocation returns the location for the provided timezone name, falling back to
// a fixed zone for the provided offset.
func resolveLocation(name string, offset null.Int) (*time.Location, bool) {
	if strings.TrimSpace(name) != "" {
		loc, err := time.LoadLocation(name)
		if err == nil {
			return loc, true
		}
	}

	if offset.Valid {
		return time.FixedZone("", int(offset.Int64)), true
	}

	return nil, false
}

// secondsSinceMidnight returns the local time of day of the provided time in seconds.
func secondsSinceMidnight(t time.Time) int64 {
	return int64(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// localTimeOfDay resolves the provided unix time to a local time of day in seconds.
func localTimeOfDay(unix int64, name string, offset null.Int) (int64, bool) {
	loc, ok := resolveLocation(name, offset)
	if !ok {
		return 0, false
	}

	return secondsSinceMidnight(time.Unix(unix, 0).In(loc)), true
}

// Update refreshes the session state with the provided quote metadata. Previously known
// values are retained when the new metadata does not resolve.
func (c *SessionClock) Update(meta *shared.QuoteMeta) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	name := strings.TrimSpace(meta.ExchangeTimezoneName.ValueOrZero())
	if name != "" {
		c.state.TimezoneName = null.StringFrom(name)
	}
	if meta.GMTOffset.Valid {
		c.state.GMTOffset = meta.GMTOffset
	}

	var regular *shared.TradingPeriod
	switch {
	case meta.CurrentTradingPeriod != nil && meta.CurrentTradingPeriod.Regular != nil:
		regular = meta.CurrentTradingPeriod.Regular
	case len(meta.TradingPeriods) > 0 && len(meta.TradingPeriods[0]) > 0:
		regular = &meta.TradingPeriods[0][0]
	default:
		return
	}

	tz := c.state.TimezoneName.ValueOrZero()
	opening, ok := localTimeOfDay(regular.Start, tz, regular.GMTOffset)
	if !ok {
		c.cfg.Logger.Debug().Msgf("unable to resolve session open for %s", meta.Symbol)
		return
	}

	closing, ok := localTimeOfDay(regular.End, tz, regular.GMTOffset)
	if !ok {
		c.cfg.Logger.Debug().Msgf("unable to resolve session close for %s", meta.Symbol)
		return
	}

	c.state.RegularOpen = null.IntFrom(opening)
	c.state.RegularClose = null.IntFrom(closing)
}

// State returns a copy of the current session state.
func (c *SessionClock) State() SessionState {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	return c.state
}

// Status returns the current market status.
func (c *SessionClock) Status() shared.MarketStatus {
	return c.StatusAt(c.cfg.Now())
}

// StatusAt returns the market status at the provided time.
func (c *SessionClock) StatusAt(now time.Time) shared.MarketStatus {
	c.mtx.RLock()
	state := c.state
	c.mtx.RUnlock()

	if !state.RegularOpen.Valid || !state.RegularClose.Valid {
		return shared.StatusUnknown
	}

	loc, ok := resolveLocation(state.TimezoneName.ValueOrZero(), state.GMTOffset)
	if !ok {
		return shared.StatusUnknown
	}

	local := now.In(loc)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return shared.StatusClosed
	}

	tod := secondsSinceMidnight(local)
	opening := state.RegularOpen.Int64 % secondsPerDay
	closing := state.RegularClose.Int64 % secondsPerDay

	var isOpen bool
	switch {
	case opening <= closing:
		isOpen = tod >= opening && tod < closing
	default:
		// The session spans midnight.
		isOpen = tod >= opening || tod <= closing
	}

	if isOpen {
		return shared.StatusOpen
	}

	return shared.StatusClosed
}
