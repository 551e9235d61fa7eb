// Package conventions applies settle's conventions to a whole project
// tree in one pass.
//
// Apply configures the environment once, builds the catalog enforcer,
// registers the root clean task and then visits every module in tree
// order: repository policy, group identity and metadata sync run before the
// catalog policy is attached to the module's resolution contexts. The
// first failing module aborts the pass and the error carries the module
// path in its details.
//
// Everything Apply needs is passed in through Inputs.
package conventions
