// Package report writes scan results to an Excel workbook and reads such
// workbooks back.
//
// A report holds the sheets "Field Overview" (one row per field, tables
// separated by an empty row), "Table Overview" (one row per table), one value
// frequency sheet per table when field values were scanned, and the metadata
// sheet "_" with the scan parameters.
package report
