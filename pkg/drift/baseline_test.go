package drift

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseline_ContainsIsExact(t *testing.T) {
	b := NewBaseline([][]string{
		{"vol-001", "us-east-1"},
		{"vol-002", "a|b"},
	})

	assert.True(t, b.Contains([]string{"vol-001", "us-east-1"}))
	assert.True(t, b.Contains([]string{"vol-002", "a|b"}))

	assert.False(t, b.Contains([]string{"vol-001"}), "shorter row never matches")
	assert.False(t, b.Contains([]string{"vol-001", "us-east-1", ""}), "longer row never matches")
	assert.False(t, b.Contains([]string{"us-east-1", "vol-001"}), "position matters")
	assert.False(t, b.Contains([]string{"vol-002", "b|a"}), "element order matters")
}

func TestBaseline_KeyingSurvivesAwkwardElements(t *testing.T) {
	// ["a,b"] and ["a","b"] must not collide, nor ["a\"","b"] with ["a","\"b"].
	b := NewBaseline([][]string{{"a,b"}})
	assert.True(t, b.Contains([]string{"a,b"}))
	assert.False(t, b.Contains([]string{"a", "b"}))

	b = NewBaseline([][]string{{`a"`, "b"}})
	assert.True(t, b.Contains([]string{`a"`, "b"}))
	assert.False(t, b.Contains([]string{"a", `"b`}))
}

func TestBaseline_AddKeepsOrderAndDedupes(t *testing.T) {
	b := NewBaseline(nil)
	assert.True(t, b.Add([]string{"vol-002"}))
	assert.True(t, b.Add([]string{"vol-001"}))
	assert.False(t, b.Add([]string{"vol-002"}), "adding an accepted row is a no-op")

	assert.Equal(t, [][]string{{"vol-002"}, {"vol-001"}}, b.Rows())
	assert.Equal(t, 2, b.Len())
}

func TestBaseline_LoadedDuplicatesSurvive(t *testing.T) {
	// Documents written by other tools may repeat rows; they round-trip as-is.
	b := NewBaseline([][]string{{"vol-001"}, {"vol-001"}})
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, [][]string{{"vol-001"}, {"vol-001"}}, b.Rows())
	assert.False(t, b.Add([]string{"vol-001"}))
}

func TestBaseline_Replace(t *testing.T) {
	b := NewBaseline([][]string{{"old"}})
	b.Replace([][]string{{"new-1"}, {"new-2"}, {"new-1"}})

	assert.Equal(t, [][]string{{"new-1"}, {"new-2"}}, b.Rows())
	assert.False(t, b.Contains([]string{"old"}))
}

func TestBaseline_RowsIsACopy(t *testing.T) {
	b := NewBaseline([][]string{{"vol-001"}})
	rows := b.Rows()
	rows[0] = []string{"mutated"}
	assert.Equal(t, [][]string{{"vol-001"}}, b.Rows())
}

func TestBaseline_Diff(t *testing.T) {
	start := NewBaseline([][]string{
		{"vol-001", "us-east-1"},
		{"vol-002", "us-west-2"},
	})
	end := NewBaseline([][]string{
		{"vol-002", "us-west-2"},
		{"vol-003", "eu-west-1"},
		{"vol-003", "eu-west-1"},
	})

	added, missing := start.Diff(end)
	assert.Equal(t, [][]string{{"vol-003", "eu-west-1"}}, added)
	assert.Equal(t, [][]string{{"vol-001", "us-east-1"}}, missing)

	added, missing = start.Diff(start)
	assert.Empty(t, added)
	assert.Empty(t, missing)
}
