// Package dispatch routes a decoded operation call through command building,
// GitHub CLI execution, and result normalization.
//
// Every dispatch is independent: the Dispatcher holds no per-call state and
// never retries. Failures are reported as a Result carrying a stable ErrorKind.
package dispatch
