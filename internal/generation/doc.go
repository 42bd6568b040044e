// Package generation provides interfaces and implementations for interacting
// with external AI/LLM services for content generation. It abstracts the
// details of LLM API integration (Gemini), allowing the application to
// produce debt insights for a user's portfolio without coupling to specific
// external services. Generators may be slow and may fail; callers must not
// assume they are deterministic or fast.
package generation
