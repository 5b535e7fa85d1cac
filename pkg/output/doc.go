// Package output publishes check results to the automation pipeline.
//
// Results are flat key=value pairs in the GitHub Actions output file format:
//
//	has_updates=true
//	new_records_count=3
//	last_check=2025-07-01T06:00:00Z
//	latest_instance_id=i-0abc123
//
// new_records_count, last_check and latest_instance_id appear only when an
// update was detected, and latest_instance_id only when the identifier
// column could be read. When the sheet yields no data at all, nothing is
// emitted; downstream steps distinguish "no data" from "no updates" by the
// absence of has_updates.
//
// Pairs are appended to the file named by GITHUB_OUTPUT and echoed to
// stdout, so the same binary works in a workflow step and in a terminal.
package output
