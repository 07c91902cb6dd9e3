// Package reconcile provides the environment fan-out and sync classification used to
// keep one product consistent across deployment environments.
//
// # Architecture
//
// The package has three parts:
//
// 1. FanOut runs one step per environment, in order, recording a message for each
// and never stopping at the first failure. Replication and repair are built on it.
//
// 2. Classify fetches a reference record's copy from each environment through an
// Adapter and reports IN SYNC, NOT IN SYNC or DOES NOT EXIST per environment. A fetch
// failure other than not-found aborts the whole check.
//
// 3. BuildPlan turns a Report into the create/update actions that would bring every
// environment back in sync.
//
// # Usage Example
//
//	report, err := reconcile.Classify(ctx, adapter, product, product.ProductID, []string{"staging", "test"})
//	plan := reconcile.BuildPlan(report, reconcile.Options{})
//	results, failed := reconcile.FanOut(ctx, plan.Targets(), repairStep)
//
// # Creating Adapters
//
// An Adapter knows how to fetch a record from a named environment and how to compare
// two records. See feature/product/reconcile for the catalog product adapter.
package reconcile
