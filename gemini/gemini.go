// Package gemini implements [steward.Provider] for the Google Gemini API
// via the official genai SDK. The SDK authenticates with a query-string API
// key and has no native system role; the system prompt travels in the
// request's SystemInstruction field.
package gemini

const defaultModel = "gemini-2.0-flash"
