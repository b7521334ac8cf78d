// Package ingestion loads policy documents into the corpus store.
//
// A Pipeline accepts documents directly through Ingest, or walks a directory
// of policy files with IngestDirectory. Policy files are plain text or
// Markdown and may open with a YAML front matter block:
//
//	---
//	policy_number: UM-200
//	policy_name: Prior Authorization
//	category: utilization-management
//	---
//	Policy text follows...
//
// Documents receive a stable ID derived from category and policy number, so
// ingesting the same policy twice replaces the stored copy.
//
// Example usage:
//
//	pipeline, err := ingestion.NewPipeline(corpus,
//		ingestion.WithPoolSize(4),
//		ingestion.WithDefaultCategory(core.CategoryCompliance),
//	)
//	if err != nil {
//		return err
//	}
//	defer pipeline.Release()
//
//	report, err := pipeline.IngestDirectory(ctx, "./policies")
package ingestion
