// Package guardrail validates and deterministically repairs search queries
// before they reach the federated resolver. Every query that survives must
// carry an anchor (a proper noun or a year paired with an entity) and, when
// the shot type demands one, a media-intent token naming a physical object.
// The guardrail never aborts a run for quality reasons; when repair cannot
// reach the minimum valid-query count it flags low coverage and continues.
package guardrail
