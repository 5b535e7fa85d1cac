package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotCounts(t *testing.T) {
	snapshot := &Snapshot{
		Header: []string{"instance_id", "status"},
		Rows: [][]string{
			{"i-001", "running"},
			{"i-002", "stopped"},
		},
	}

	assert.Equal(t, 2, snapshot.RowCount())
	assert.Equal(t, 2, snapshot.ColumnCount())
	assert.False(t, snapshot.IsEmpty())
}

func TestSnapshotIsEmpty(t *testing.T) {
	var nilSnapshot *Snapshot
	assert.True(t, nilSnapshot.IsEmpty())
	assert.Equal(t, 0, nilSnapshot.RowCount())

	assert.True(t, (&Snapshot{}).IsEmpty())

	// A header with no data rows is not "empty": the fetch produced
	// tabular content
	headerOnly := &Snapshot{Header: []string{"id"}}
	assert.False(t, headerOnly.IsEmpty())
	assert.Equal(t, 0, headerOnly.RowCount())
}

func TestColumnIndex(t *testing.T) {
	snapshot := &Snapshot{
		Header: []string{"Instance_ID", " region ", "status"},
	}

	t.Run("exact match", func(t *testing.T) {
		idx, ok := snapshot.ColumnIndex("status")
		assert.True(t, ok)
		assert.Equal(t, 2, idx)
	})

	t.Run("case-insensitive fallback", func(t *testing.T) {
		idx, ok := snapshot.ColumnIndex("instance_id")
		assert.True(t, ok)
		assert.Equal(t, 0, idx)
	})

	t.Run("trimmed fallback", func(t *testing.T) {
		idx, ok := snapshot.ColumnIndex("region")
		assert.True(t, ok)
		assert.Equal(t, 1, idx)
	})

	t.Run("missing column", func(t *testing.T) {
		_, ok := snapshot.ColumnIndex("deployment_id")
		assert.False(t, ok)
	})

	t.Run("empty name", func(t *testing.T) {
		_, ok := snapshot.ColumnIndex("")
		assert.False(t, ok)
	})
}

func TestFirstAndLastRow(t *testing.T) {
	snapshot := &Snapshot{
		Header: []string{"id"},
		Rows:   [][]string{{"1"}, {"2"}, {"3"}},
	}

	row, ok := snapshot.FirstRow()
	assert.True(t, ok)
	assert.Equal(t, []string{"1"}, row)

	row, ok = snapshot.LastRow()
	assert.True(t, ok)
	assert.Equal(t, []string{"3"}, row)

	empty := &Snapshot{Header: []string{"id"}}
	_, ok = empty.FirstRow()
	assert.False(t, ok)
	_, ok = empty.LastRow()
	assert.False(t, ok)
}

func TestCell(t *testing.T) {
	snapshot := &Snapshot{
		Header: []string{"a", "b"},
		Rows:   [][]string{{"1", "2"}, {"3"}},
	}

	assert.Equal(t, "2", snapshot.Cell(0, 1))
	assert.Equal(t, "3", snapshot.Cell(1, 0))

	// Ragged row: the missing cell reads as empty
	assert.Equal(t, "", snapshot.Cell(1, 1))

	// Out of range
	assert.Equal(t, "", snapshot.Cell(5, 0))
	assert.Equal(t, "", snapshot.Cell(-1, 0))
}
