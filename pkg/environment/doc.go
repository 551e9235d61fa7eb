// Package environment produces the one immutable EnvironmentConfig of a
// run: repository search order and policy, the local build cache and the
// telemetry consent flags. It also provides the environment-variable and
// root-property readers that the rest of settle is handed explicitly.
package environment
