// Package sheets provides a client for fetching publicly shared Google
// Sheets through their CSV export endpoints.
//
// This package includes:
//   - A configurable HTTP client with retries and typed error handling
//   - The Snapshot model representing one parsed copy of a sheet
//   - Helper functions for constructing export URLs
//   - CSV parsing that preserves the header/data-row split
//
// Example usage:
//
//	client := sheets.NewClient(30*time.Second, logger.GetLogger())
//
//	snapshot, err := client.FetchSnapshot(ctx, spreadsheetID, "Sheet1")
//	if err != nil {
//	    var fetchErr *errs.Error
//	    if errors.As(err, &fetchErr) {
//	        switch fetchErr.Type {
//	        case errs.ErrorTypeAccessDenied:
//	            // Sheet is not shared publicly
//	        case errs.ErrorTypeRateLimit:
//	            // Handle rate limit
//	        }
//	    }
//	}
//
//	fmt.Println(snapshot.RowCount(), "data rows")
package sheets
