package claude

import (
	"strconv"
	"strings"
)

// buildArgs arma el argv de una invocacion del CLI. Una sesion existente se
// continua con --resume; stream-json exige --verbose en modo --print.
func buildArgs(prompt, resumeSessionID string, maxTurns int, allowedTools []string) []string {
	var args []string

	if resumeSessionID != "" {
		args = append(args, "--resume", resumeSessionID)
	}
	args = append(args, "-p", prompt)
	args = append(args, "--output-format", "stream-json", "--verbose")
	args = append(args, "--max-turns", strconv.Itoa(maxTurns))
	if len(allowedTools) > 0 {
		args = append(args, "--allowedTools", strings.Join(allowedTools, ","))
	}
	args = append(args, "--dangerously-skip-permissions")

	return args
}
