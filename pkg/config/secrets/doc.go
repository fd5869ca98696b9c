// Package secrets resolves ${secret:name} references in configuration.
//
// Credential fields (provider API keys, S3 keys, the audit DSN) may hold a
// reference instead of a literal:
//
//	providers:
//	  gemini:
//	    api_key: ${secret:gemini-api-key}
//
// A Resolver asks its sources in order. The usual chain is a directory of
// mounted secret files (one file per secret, mode 0600 or 0400) followed by
// the environment, where "gemini-api-key" is read from
// IMAGERY_SECRET_GEMINI_API_KEY. Resolved values are cached for a TTL.
//
// Secret names are never logged in full and values never at all.
package secrets
