// Package preflight provides readiness checks for the external tools and
// filesystem paths a conversion run depends on.
//
// The pipeline runs these before fetching and only warns on failures: the
// tool invocations themselves decide the outcome. The `connect2vid deps`
// command renders CheckSystemDeps as a table.
package preflight
