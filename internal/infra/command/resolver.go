// Package command parses catalog launch commands and resolves the secret
// placeholders embedded in them against the environment.
package command

import (
	"os"
	"regexp"
	"sort"

	shellwords "github.com/mattn/go-shellwords"

	"mcpsync/internal/domain"
)

// Secret placeholder grammar, part of the wire contract with server-record
// authors: YOUR__NAME and <YOUR_NAME>, NAME matching [A-Z_]+.
var (
	bareSecretPattern    = regexp.MustCompile(`YOUR__([A-Z_]+)`)
	bracketSecretPattern = regexp.MustCompile(`<YOUR_([A-Z_]+)>`)
)

// Parse splits a launch command into executable and arguments using shell
// word-splitting rules, so quoted arguments with embedded spaces survive.
func Parse(raw string) (domain.ParsedCommand, error) {
	parts, err := shellwords.Parse(raw)
	if err != nil {
		return domain.ParsedCommand{}, domain.E(domain.CodeInvalidCommand, "command.Parse", "", err)
	}
	if len(parts) == 0 {
		return domain.ParsedCommand{}, domain.E(domain.CodeInvalidCommand, "command.Parse", "empty command", nil)
	}
	return domain.ParsedCommand{
		Executable: parts[0],
		Args:       parts[1:],
	}, nil
}

// ResolveSecrets substitutes both placeholder spellings for every secret name
// whose environment variable is set. Names with no environment value are left
// intact in the command and returned so the caller can warn about them.
// The result is a fixed point: resolving it again changes nothing.
func ResolveSecrets(raw string) (string, []string) {
	names := make(map[string]struct{})
	for _, match := range bareSecretPattern.FindAllStringSubmatch(raw, -1) {
		names[match[1]] = struct{}{}
	}
	for _, match := range bracketSecretPattern.FindAllStringSubmatch(raw, -1) {
		names[match[1]] = struct{}{}
	}
	if len(names) == 0 {
		return raw, nil
	}

	var missing []string
	substitute := func(pattern *regexp.Regexp, input string) string {
		return pattern.ReplaceAllStringFunc(input, func(match string) string {
			name := pattern.FindStringSubmatch(match)[1]
			if value, ok := os.LookupEnv(name); ok {
				return value
			}
			return match
		})
	}
	resolved := substitute(bareSecretPattern, raw)
	resolved = substitute(bracketSecretPattern, resolved)

	ordered := make([]string, 0, len(names))
	for name := range names {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)
	for _, name := range ordered {
		if _, ok := os.LookupEnv(name); !ok {
			missing = append(missing, name)
		}
	}
	return resolved, missing
}
