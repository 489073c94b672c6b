package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func TestDate_AddDays(t *testing.T) {
	d := Date{Year: 2026, Month: time.December, Day: 31}
	assert.Equal(t, Date{Year: 2027, Month: time.January, Day: 1}, d.AddDays(1))
	assert.Equal(t, Date{Year: 2027, Month: time.January, Day: 2}, d.AddDays(2))
	assert.Equal(t, Date{Year: 2026, Month: time.December, Day: 30}, d.AddDays(-1))
	assert.Equal(t, d, d.AddDays(0))
}

func TestDate_RoundTripThroughMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	instants := []time.Time{
		time.Date(2026, 3, 14, 0, 0, 0, 0, loc),
		time.Date(2026, 3, 14, 12, 30, 0, 0, loc),
		time.Date(2026, 3, 14, 23, 59, 59, 0, loc),
	}

	for _, x := range instants {
		d := DateOf(x)
		back := d.Midnight(loc)
		assert.Equal(t, d, DateOf(back), "instant %s", x)
		assert.Equal(t, 0, back.Hour())
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-02-03")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2026, Month: time.February, Day: 3}, d)
	assert.Equal(t, "2026-02-03", d.String())

	_, err = ParseDate("2026/02/03")
	assert.Error(t, err)
}

func TestToday(t *testing.T) {
	clock := fixedClock{now: time.Date(2026, 10, 14, 22, 0, 0, 0, time.Local)}
	assert.Equal(t, Date{Year: 2026, Month: time.October, Day: 14}, Today(clock))
}

func TestDate_Before(t *testing.T) {
	d := Date{Year: 2026, Month: time.October, Day: 14}

	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.Before(Date{Year: 2027, Month: time.January, Day: 1}))
	assert.False(t, d.Before(d))
	assert.False(t, d.Before(d.AddDays(-1)))
	assert.False(t, d.Before(Date{Year: 2026, Month: time.September, Day: 30}))
}
