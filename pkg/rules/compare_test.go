package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var reference = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestCompare_String(t *testing.T) {
	tests := []struct {
		name  string
		value string
		op    ComparisonOperator
		raw   string
		want  bool
	}{
		{"equals ignores case", "Ryu", Equals, "RYU", true},
		{"equals is exact", "Ryu", Equals, "Ry", false},
		{"not equals", "Ryu", NotEquals, "Ken", true},
		{"not equals ignores case", "Ryu", NotEquals, "ryu", false},
		{"contains substring", "Street Fighter II", Contains, "fighter", true},
		{"contains missing", "Street Fighter II", Contains, "tekken", false},
		{"not contains", "Street Fighter II", NotContains, "tekken", true},
		{"not contains present", "Street Fighter II", NotContains, "STREET", false},
		{"illegal operator", "Ryu", WithinDays, "3", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(StringValue(tt.value), tt.op, tt.raw, reference))
		})
	}
}

func TestCompare_TagSet(t *testing.T) {
	tags := SetValue([]string{"A", "B"})

	assert.True(t, Compare(tags, Contains, "A", reference))
	assert.True(t, Compare(tags, Contains, "a, b", reference))
	assert.False(t, Compare(tags, Contains, "A,C", reference), "missing C")
	assert.True(t, Compare(tags, NotContains, "C,D", reference))
	assert.False(t, Compare(tags, NotContains, "C,A", reference), "shares A")
	assert.True(t, Compare(tags, IsNotEmpty, "", reference))
	assert.False(t, Compare(tags, IsEmpty, "", reference))

	empty := SetValue(nil)
	assert.True(t, Compare(empty, IsEmpty, "", reference))
	assert.False(t, Compare(empty, IsNotEmpty, "", reference))
	assert.True(t, Compare(SetValue([]string{" ", ""}), IsEmpty, "", reference), "blank tags are dropped")

	assert.False(t, Compare(tags, Equals, "A,B", reference))
}

func TestCompare_Bool(t *testing.T) {
	assert.True(t, Compare(BoolValue(true), Equals, "TRUE", reference))
	assert.True(t, Compare(BoolValue(false), Equals, "false", reference))
	assert.False(t, Compare(BoolValue(true), Equals, "false", reference))
	assert.True(t, Compare(BoolValue(true), NotEquals, "false", reference))
	assert.False(t, Compare(BoolValue(true), Equals, "yes", reference))
	assert.False(t, Compare(BoolValue(true), NotEquals, "1", reference))
}

func TestCompare_DateWithinDays(t *testing.T) {
	sevenDaysAgo := DateValue(reference.Add(-7 * day))
	assert.True(t, Compare(sevenDaysAgo, WithinDays, "7", reference), "boundary is inclusive")
	assert.False(t, Compare(DateValue(reference.Add(-7*day-time.Second)), WithinDays, "7", reference))
	assert.True(t, Compare(DateValue(reference.Add(time.Hour)), WithinDays, "0", reference))
	assert.False(t, Compare(sevenDaysAgo, WithinDays, "-1", reference))
	assert.False(t, Compare(sevenDaysAgo, WithinDays, "seven", reference))
}

func TestCompare_DateWithinDaysLargeCounts(t *testing.T) {
	yesterday := DateValue(reference.Add(-day))
	ancient := DateValue(time.Date(1700, time.January, 1, 0, 0, 0, 0, time.UTC))

	for _, days := range []string{"100000", "106751", "106752", "200000", "999999999"} {
		assert.True(t, Compare(yesterday, WithinDays, days, reference), "withinDays %s", days)
	}

	// 1700-01-01 lies 118407.5 days before the reference date.
	assert.False(t, Compare(ancient, WithinDays, "118407", reference))
	assert.True(t, Compare(ancient, WithinDays, "118408", reference))
	assert.True(t, Compare(ancient, WithinDays, "999999999", reference))
}

func TestCompare_DateWithinDaysSubSecondBoundary(t *testing.T) {
	boundary := reference.Add(-7 * day)

	assert.True(t, Compare(DateValue(boundary), WithinDays, "7", reference))
	assert.True(t, Compare(DateValue(boundary.Add(time.Nanosecond)), WithinDays, "7", reference))
	assert.False(t, Compare(DateValue(boundary.Add(-time.Nanosecond)), WithinDays, "7", reference))
}

func TestCompare_DateOrdering(t *testing.T) {
	installed := DateValue(time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, Compare(installed, LessThan, "2024-01-01", reference))
	assert.False(t, Compare(installed, GreaterThan, "2024-01-01", reference))
	assert.True(t, Compare(installed, GreaterThan, "2023-05-31T23:59:59Z", reference))
	assert.False(t, Compare(installed, LessThan, "2023-06-01", reference), "strictly before")
	assert.False(t, Compare(installed, LessThan, "last tuesday", reference))
	assert.False(t, Compare(installed, GreaterThan, "", reference))
}

func TestCompare_Number(t *testing.T) {
	width := NumberValue(640)

	assert.True(t, Compare(width, Equals, "640", reference))
	assert.True(t, Compare(width, Equals, " 640.0 ", reference))
	assert.True(t, Compare(width, NotEquals, "320", reference))
	assert.True(t, Compare(width, GreaterThan, "320", reference))
	assert.False(t, Compare(width, LessThan, "320", reference))
	assert.False(t, Compare(width, GreaterThan, "notanumber", reference))
	assert.False(t, Compare(width, NotEquals, "NaN", reference))
}

func TestCompare_NotApplicable(t *testing.T) {
	for _, op := range Comparisons() {
		assert.False(t, Compare(Value{}, op, "", reference), "%s", op)
	}
	assert.False(t, DateValue(time.Time{}).Applicable())
}
