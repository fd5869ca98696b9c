// Package prompt turns a resolved decision into a structured prompt plan and
// renders that plan into the single string sent to an image provider.
//
// Plan is the only place where meaning is attached to a category. Assemble is
// a pure string builder over the plan. Every assembled prompt states the
// category, platform and energy intent, asks for abstract non-literal imagery
// with no identifiable people, faces or real locations, and ends with a
// "Must not include:" clause listing every negative rule.
//
// The assembled string is held in memory for the duration of one provider
// call. Callers must never log or persist it.
package prompt
