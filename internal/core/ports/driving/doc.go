// Package driving defines the interfaces through which external actors
// drive the core (the "primary" ports in hexagonal architecture).
//
// The CLI and any host process (HTTP endpoint, chat frontend) call these;
// core services implement them.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or service package
package driving
