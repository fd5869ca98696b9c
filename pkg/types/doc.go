// Package types defines the request, decision and enum types shared by the
// image decision engine.
//
// # Core Types
//
// Input:
//   - Request: an abstract "brand-safe image for platform X, category Y" ask
//   - BrandKit: optional brand influence (palette, industry, locale, tone)
//   - SafetyOverrides: explicit caller overrides evaluated by the safety gate
//
// Output of resolution:
//   - Decision: the immutable, deterministic description of how a request
//     will (or will not) be fulfilled
//   - PromptPlan: template id, variables and negative rules
//   - ProviderPlan: provider id, model tier and planning notes
//
// # Defaults
//
// Platform aspect defaults and category defaults (energy, text allowance) are
// fixed lookup tables in defaults.go. They are pure data so that resolution
// stays deterministic across process restarts.
//
// Decisions are values. Nothing in this module mutates a Decision after it is
// returned by the resolver; callers should treat the slices and maps it holds
// as read-only.
package types
