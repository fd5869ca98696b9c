// Package decision resolves an image request into an immutable Decision.
//
// Resolve is deterministic: identical requests and options always produce
// byte-identical decisions. It reads no clock, no environment and no random
// source. Environment-dependent choices such as the configured provider are
// passed in through Options.
//
// Resolution steps, in order:
//
//  1. Platform aspect default, unless the request overrides it
//  2. Category defaults (energy, text allowance), unless overridden
//  3. Safety evaluation
//  4. Not allowed: mode=fallback with empty prompt and provider plans
//  5. Allowed: prompt plan and provider plan
package decision
