// Package planner produces shot plans. A DraftProvider (an OpenRouter
// chat-completions client in production) proposes a draft plan; the
// deterministic compiler builds one from narration beat segmentation
// alone. BuildPlan prefers a valid draft and silently falls back to the
// compiled plan, so the pipeline behaves identically when the provider is
// absent, failing, or returning garbage.
package planner
