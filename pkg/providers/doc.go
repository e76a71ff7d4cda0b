// Package providers contains modeladapter.Completer implementations for the
// LLM APIs sleuth talks to. Each sub-package adapts one provider's wire
// format to the chats conversation model.
package providers
