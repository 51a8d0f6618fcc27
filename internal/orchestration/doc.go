// Package orchestration runs batches of funnel plans concurrently and
// aggregates their reports. It decouples the computation from presentation
// via the ProgressReporter and ResultPresenter interfaces.
package orchestration
