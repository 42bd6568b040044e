// Package gemini provides an implementation of the generation.InsightGenerator
// interface that uses Google's Gemini API to analyze debt portfolios.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the application's domain logic to Google's external Gemini AI
// service. It translates between the application's domain models and the
// Gemini API without exposing the details of the external service to the
// core application.
//
// Key components:
//
// 1. InsightGenerator:
//   - Implements the generation.InsightGenerator interface
//   - Handles communication with the Gemini API
//   - Processes structured responses into opaque insight documents
//
// 2. Prompt Management:
//   - Renders the debt portfolio into a prompt template
//   - Ships an embedded default template, overridable from a file
//
// 3. Error Handling:
//   - Implements retry logic with exponential backoff for transient errors
//   - Categorizes and translates API errors to application-specific errors
//   - Handles content filtering and safety measures
package gemini
