// Imagery is a brand-safe image decision and generation service.
//
// Every request is resolved into a deterministic decision. Decisions that
// pass the safety gate are rendered by an image provider, stored, and
// returned with alt text; everything else falls back without touching a
// provider.
//
// Usage:
//
//	# Serve the HTTP API
//	imagery serve --config /etc/imagery/config.yaml
//
//	# Print the decision for a request without generating
//	imagery decide -f request.json
//
//	# Generate one image, or a batch from a JSON array
//	imagery generate -f requests.json --output json
//
//	# Inspect the audit log
//	imagery audit get 3f2c9a0e-7c61-4d3a-9b7e-2f8a1c5d6e70
//	imagery audit list --status fallback --limit 20
package main

func main() {
	Execute()
}
