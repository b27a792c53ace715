package day

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOf_IgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2020, 12, 1, 0, 5, 0, 0, time.UTC)
	evening := time.Date(2020, 12, 1, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, Of(morning), Of(evening))
	assert.Equal(t, "2020-12-01", Of(evening).String())
}

func TestAddMonths_CrossesYear(t *testing.T) {
	d := MustParse("2020-11-15")
	assert.Equal(t, MustParse("2021-02-15"), d.AddMonths(3))
	assert.Equal(t, MustParse("2020-11-22"), d.AddDays(7))
}

func TestCompare(t *testing.T) {
	a := MustParse("2020-12-01")
	b := MustParse("2020-12-02")

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 0, a.Compare(MustParse("2020-12-01")))
	assert.Equal(t, 1, a.DaysUntil(b))
	assert.Equal(t, -1, b.DaysUntil(a))
}

func TestNewSet_SortsAndDeduplicates(t *testing.T) {
	s := NewSet(MustParse("2020-12-03"), MustParse("2020-12-01"), MustParse("2020-12-03"))

	require.Len(t, s, 2)
	assert.Equal(t, MustParse("2020-12-01"), s.Min())
	assert.Equal(t, MustParse("2020-12-03"), s.Max())
}

func TestSet_Operations(t *testing.T) {
	s := NewSet(MustParse("2020-12-01"), MustParse("2020-12-02"))
	other := NewSet(MustParse("2020-12-02"), MustParse("2020-12-05"))

	assert.Equal(t, NewSet(MustParse("2020-12-01"), MustParse("2020-12-02"), MustParse("2020-12-05")), s.Union(other))
	assert.Equal(t, Set{MustParse("2020-12-01")}, s.Without(other))
	assert.Equal(t, Set{MustParse("2020-12-02")}, s.Intersect(other))
}

func TestSet_ValueAndScan(t *testing.T) {
	s := NewSet(MustParse("2020-12-02"), MustParse("2020-12-01"))

	v, err := s.Value()
	require.NoError(t, err)
	assert.Equal(t, `["2020-12-01","2020-12-02"]`, v)

	var scanned Set
	require.NoError(t, scanned.Scan([]byte(`["2020-12-02","2020-12-01T10:00:00Z"]`)))
	assert.Equal(t, s, scanned)
}

func TestDate_ScanTime(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, New(2021, time.March, 4), d)
}

func TestDate_JSON(t *testing.T) {
	var payload struct {
		Dates []Date `json:"dates"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"dates":["2020-12-01"]}`), &payload))
	require.Len(t, payload.Dates, 1)

	out, err := json.Marshal(payload.Dates[0])
	require.NoError(t, err)
	assert.Equal(t, `"2020-12-01"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"dates":["12/01/2020"]}`), &payload))
}
