// Package safety implements the brand-safety gate evaluated before any
// prompt is planned.
//
// Evaluate is a pure, total function: it never mutates the request and never
// fails. It annotates the request with the reasons of every rule that fired.
// Any single hard rule blocks live generation; soft rules are informational
// and only shape what the prompt planner is allowed to use.
//
// Hard rules, in evaluation order:
//
//	missing_request_id
//	invalid_field:<field>
//	missing_consumer_app
//	disallowed_combination:<category>/<platform>
//	forced_fallback[:<reason>]
//	testimonial_claim_in_overlay
//
// Soft rules:
//
//	brand_color_ignored:<index>
//	brand_field_sanitized:<field>
//	overlay_text_dropped:<why>
//	aspect_override:<aspect>
//	text_disallowed_by_override
package safety
