// Package rendergraph implements a resource/pass dependency graph that
// compiles into an ordered execution plan with synchronization
// barriers inferred from declared read/write accesses.
//
// Resources and passes are declared against a single-owner Graph,
// compiled once per frame (or configuration change) into a Plan, and
// executed by walking the plan's ordered passes and invoking each
// pass's execute callback between bound barriers.
package rendergraph
