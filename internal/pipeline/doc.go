// Package pipeline runs the extract, transform and load stages in order.
//
// A run acquires the optional run lock, creates sample inputs when they are
// missing, extracts sales and customers, transforms them and hands the
// processed list to every loader. Extraction with an empty result and a
// transform that accepts nothing halt the run before any loader is called.
// Each stage is traced, timed and recorded in a RunManifest; the Report
// returned by Run summarizes the counts and loader outcomes.
package pipeline
