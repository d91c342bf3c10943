// Package load writes processed sales to their targets.
//
// Every target implements Loader and receives the full processed list.
// Loaders share no state, so RunAll runs them one after another and a
// failing loader never prevents the others from writing.
//
// Targets:
//
//	TableLoader   SQL table processed_sales, upserted on sale_id (sqlite or postgres)
//	CSVLoader     header plus one row per sale
//	JSONLoader    indented array of objects
//	XLSXLoader    single-sheet workbook with numeric money cells
//	S3Publisher   CSV and JSON renderings uploaded to a bucket
//
// All targets use the column order in domain.Columns.
package load
