// Package engine orchestrates one image request from decision to stored
// image.
//
// Generate walks a fixed sequence of stages:
//
//	decide -> assemble -> size -> provider -> storage -> alt_text
//
// A fallback decision stops after decide. A failed provider call or storage
// write stops at that stage. Every exit returns a GenerationResult; Generate
// recovers from panics in any stage and reports them as UNEXPECTED_ERROR.
//
// The assembled prompt exists only inside Generate. It is handed to the
// provider, masked in the stage logger, and stripped from every error
// message before the result leaves the package. It is never written to the
// audit sink, to span attributes or to metrics labels.
package engine
