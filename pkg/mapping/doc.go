// Package mapping holds the model of an ETL design: the scanned source
// database, the target data model and the table and field mappings between
// them.
//
// Source models are built from scan reports (FromScanReport), target models
// from data model description files (LoadCDMCSV). An ETL is stored as JSON,
// gzip-compressed when the file name ends in .gz:
//
//	source, err := mapping.FromScanReport("ScanReport.xlsx")
//	target, err := mapping.LoadCDMCSV("CDMV5.4.csv")
//	etl := mapping.NewETL(source, target)
//	err = etl.AddMapping(mapping.ItemToItemMap{SourceTable: "patients.csv", TargetTable: "person"})
//	err = etl.Save("etl-specs.json.gz")
package mapping
