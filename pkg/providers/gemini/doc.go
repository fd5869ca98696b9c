// Package gemini implements the Provider interface over the Gemini
// generateContent REST endpoint with image output.
//
// One POST is issued per Generate call:
//
//	POST {base_url}/v1beta/models/{model}:generateContent
//	x-goog-api-key: {api_key}
//
// The request asks for IMAGE response modality and passes the aspect ratio
// through imageConfig. The first inlineData part of the first candidate is
// returned as the image. A response without inline image data yields
// NO_IMAGE_RETURNED with the block or finish reason; an undecodable body
// yields PROVIDER_BAD_RESPONSE.
package gemini
