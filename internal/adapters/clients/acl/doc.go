// Package acl is the anti-corruption layer between the reading pipeline and
// the hosted chat-completion API.
//
// Two providers are supported: DashScope, which speaks the OpenAI wire format
// in compatible mode, and the Anthropic Messages API. [NewGenerator] picks
// one from llm.provider. Request and response types, status codes and error
// bodies stay inside this package; callers only see a reading string or a
// domain error:
//
//   - missing credential → [domain.ErrConfiguration], no network call
//   - any upstream failure → [domain.ErrGeneration]
//   - no choices or blank content → [domain.ErrGeneration]
//
// Transport concerns (tracing, circuit breaker, ID propagation, timeouts)
// belong to [clients.Client], which both SDKs use as their HTTP client.
package acl
