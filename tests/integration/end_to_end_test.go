package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/MPAN-cpu/Automation-Test/pkg/errors"
	"github.com/MPAN-cpu/Automation-Test/pkg/monitor"
)

// TestFirstRunThenNoChange walks the two most common consecutive runs: the
// first check ever, then a check against an unchanged sheet.
func TestFirstRunThenNoChange(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()

	helper.Server.SetSheet("Sheet1", SheetCSV(5))
	m := helper.NewMonitor()

	// First run: everything is new
	result, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, monitor.OutcomeUpdated, result.Outcome)

	outputs := helper.ReadOutputs()
	assert.Equal(t, "true", outputs["has_updates"])
	assert.Equal(t, "5", outputs["new_records_count"])
	assert.Equal(t, "i-005", outputs["latest_instance_id"])
	assert.NotEmpty(t, outputs["last_check"])

	st := helper.LoadState()
	require.NotNil(t, st.LastHash)
	assert.Equal(t, 5, st.LastRowCount)

	// Second run: nothing changed
	helper.ClearOutputs()
	result, err = helper.NewMonitor().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, monitor.OutcomeNoChange, result.Outcome)

	outputs = helper.ReadOutputs()
	assert.Equal(t, map[string]string{"has_updates": "false"}, outputs)
}

// TestGrowthAcrossRuns verifies delta counting and identifier extraction
// when rows are appended between checks.
func TestGrowthAcrossRuns(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()

	helper.Server.SetSheet("Sheet1", SheetCSV(10))
	_, err := helper.NewMonitor().Run(context.Background())
	require.NoError(t, err)

	// Three rows appear before the next run
	helper.Server.SetSheet("Sheet1", SheetCSV(13))
	helper.ClearOutputs()

	result, err := helper.NewMonitor().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, monitor.OutcomeUpdated, result.Outcome)

	outputs := helper.ReadOutputs()
	assert.Equal(t, "true", outputs["has_updates"])
	assert.Equal(t, "3", outputs["new_records_count"])
	assert.Equal(t, "i-013", outputs["latest_instance_id"])

	assert.Equal(t, 13, helper.LoadState().LastRowCount)
}

// TestShrinkageAcrossRuns verifies that removed rows report a negative
// delta and suppress the identifier.
func TestShrinkageAcrossRuns(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()

	helper.Server.SetSheet("Sheet1", SheetCSV(10))
	_, err := helper.NewMonitor().Run(context.Background())
	require.NoError(t, err)

	helper.Server.SetSheet("Sheet1", SheetCSV(8))
	helper.ClearOutputs()

	result, err := helper.NewMonitor().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, monitor.OutcomeUpdated, result.Outcome)

	outputs := helper.ReadOutputs()
	assert.Equal(t, "true", outputs["has_updates"])
	assert.Equal(t, "-2", outputs["new_records_count"])

	// The last row is not new, so its identifier is not reported
	_, present := outputs["latest_instance_id"]
	assert.False(t, present)
}

// TestEditWithoutGrowth verifies that a pure edit is reported as a change
// with a zero delta and no identifier.
func TestEditWithoutGrowth(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()

	helper.Server.SetSheet("Sheet1", SheetCSV(4))
	_, err := helper.NewMonitor().Run(context.Background())
	require.NoError(t, err)

	// Same shape, one edited cell
	edited := "\"instance_id\",\"region\",\"status\"\n" +
		"\"i-001\",\"us-east-1\",\"running\"\n" +
		"\"i-002\",\"us-east-1\",\"stopped\"\n" +
		"\"i-003\",\"us-east-1\",\"running\"\n" +
		"\"i-004\",\"us-east-1\",\"running\"\n"
	helper.Server.SetSheet("Sheet1", edited)
	helper.ClearOutputs()

	result, err := helper.NewMonitor().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, monitor.OutcomeUpdated, result.Outcome)

	outputs := helper.ReadOutputs()
	assert.Equal(t, "true", outputs["has_updates"])
	assert.Equal(t, "0", outputs["new_records_count"])
	_, present := outputs["latest_instance_id"]
	assert.False(t, present)
}

// TestServerErrorsAreRetried verifies that transient 500s are retried until
// the export succeeds.
func TestServerErrorsAreRetried(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()

	helper.Server.SetSheet("Sheet1", SheetCSV(2))
	helper.Server.FailNext(2)

	result, err := helper.NewMonitor().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, monitor.OutcomeUpdated, result.Outcome)
	assert.Equal(t, 3, helper.Server.RequestCount())
	assert.Equal(t, "2", helper.ReadOutputs()["new_records_count"])
}

// TestFetchFailureLeavesStateAlone verifies that a failed fetch neither
// touches the state file nor emits outputs; the next successful run must
// still compare against the last good state.
func TestFetchFailureLeavesStateAlone(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()

	helper.Server.SetSheet("Sheet1", SheetCSV(5))
	_, err := helper.NewMonitor().Run(context.Background())
	require.NoError(t, err)

	stateBefore := helper.LoadState()
	helper.ClearOutputs()

	// The sheet becomes private
	helper.Server.SetStatus(http.StatusForbidden)

	result, err := helper.NewMonitor().Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)

	var typed *errs.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errs.ErrorTypeAccessDenied, typed.Type)

	// State and outputs are untouched
	assert.Empty(t, helper.ReadOutputs())
	stateAfter := helper.LoadState()
	assert.Equal(t, *stateBefore.LastHash, *stateAfter.LastHash)
	assert.Equal(t, stateBefore.LastRowCount, stateAfter.LastRowCount)

	// Sharing is fixed: the next run sees no change, not a false first run
	helper.Server.SetStatus(http.StatusOK)
	next, err := helper.NewMonitor().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, monitor.OutcomeNoChange, next.Outcome)
}

// TestNoDataShortCircuit verifies the empty-sheet outcome: no outputs, no
// state write, successful exit.
func TestNoDataShortCircuit(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()

	helper.Server.SetSheet("Sheet1", "")

	result, err := helper.NewMonitor().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, monitor.OutcomeNoData, result.Outcome)
	assert.Nil(t, result.Report)
	assert.Empty(t, helper.ReadOutputs())
	assert.False(t, helper.StateFileExists())
	assert.True(t, helper.Log.HasMessage("No data found in sheet"))
}

// TestRepresentationDriftIsNotAChange verifies end to end that numeric
// formatting drift between fetches does not trigger a false update.
func TestRepresentationDriftIsNotAChange(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()

	helper.Server.SetSheet("Sheet1", "\"instance_id\",\"cpu_count\"\n\"i-001\",\"4\"\n")
	_, err := helper.NewMonitor().Run(context.Background())
	require.NoError(t, err)

	// The export re-renders the number differently; the content is the same
	helper.Server.SetSheet("Sheet1", "\"instance_id\",\"cpu_count\"\n\"i-001\",\"4.0\"\n")
	helper.ClearOutputs()

	result, err := helper.NewMonitor().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, monitor.OutcomeNoChange, result.Outcome)
	assert.Equal(t, map[string]string{"has_updates": "false"}, helper.ReadOutputs())
}

// TestSheetTabNotFound verifies that a wrong tab name surfaces as a typed
// not-found error rather than an empty result.
func TestSheetTabNotFound(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()

	helper.Server.SetSheet("Sheet1", SheetCSV(2))
	helper.Config.Sheet.SheetName = "Missing Tab"

	_, err := helper.NewMonitor().Run(context.Background())
	require.Error(t, err)

	var typed *errs.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errs.ErrorTypeNotFound, typed.Type)
	assert.False(t, helper.StateFileExists())
}
