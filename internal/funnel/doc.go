// Package funnel implements the reverse funnel projection: from a revenue
// target, a media budget, an average ticket and a baseline conversion rate it
// derives the sales and leads required and the maximum cost per lead (CPL)
// for a fixed set of pessimistic, realistic and optimistic scenarios.
//
// Everything in this package is a pure computation. Compute holds no state,
// performs no I/O and is safe to call concurrently.
package funnel
