// Package prompts holds the hardcoded system instructions sent to the model.
//
// The instructions are deliberately constants with no external input: the
// system turn cannot be overridden from the CLI, configuration, or the user
// request itself.
package prompts

import "fmt"

// constraints is the shared behavioral contract for both the single-shot
// and the tool-calling paths.
const constraints = `You are an expert macOS terminal and development environment engineer.

Constraints:
- Respond ONLY with valid shell commands, one per line.
- Do not include explanations, comments, Markdown, or prose.
- Prefer Homebrew for package installation where appropriate.
- Avoid destructive operations (no rm -rf, no disk formatting, no sudo unless clearly necessary and safe).`

// webSearchGuidance extends the constraints for the chat path, where the
// web_search tool is offered.
const webSearchGuidance = `When you need current information (latest versions, recent releases, current documentation), use the web_search tool to find up-to-date information before responding.`

// BuildPrompt returns the full single-shot prompt for the /api/generate
// path: the system constraints followed by the user request.
func BuildPrompt(userRequest string) string {
	return fmt.Sprintf("%s\n\nUser request:\n%s", constraints, userRequest)
}

// ChatSystemPrompt returns the system turn for the tool-calling chat path.
func ChatSystemPrompt() string {
	return constraints + "\n\n" + webSearchGuidance
}
