// Package envfile reads dotenv-style KEY=VALUE files used for local overrides.
package envfile

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/conn-castle/apps/internal/messages"
)

// Load reads the file at path and returns the variables whose key starts with prefix.
// A missing file yields an empty map.
func Load(path string, prefix string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	env, err := Parse(string(data))
	if err != nil {
		return nil, err
	}
	for key := range env {
		if !strings.HasPrefix(key, prefix) {
			delete(env, key)
		}
	}
	return env, nil
}

// Parse reads .env content into a key-value map. Later keys override earlier ones.
func Parse(content string) (map[string]string, error) {
	env := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(content))
	for lineNo := 1; scanner.Scan(); lineNo++ {
		key, value, ok, err := parseLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf(messages.EnvfileLineErrorFmt, lineNo, err)
		}
		if ok {
			env[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf(messages.EnvfileReadFailedFmt, err)
	}
	return env, nil
}

func parseLine(line string) (string, string, bool, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", "", false, nil
	}
	trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "export "))

	key, value, found := strings.Cut(trimmed, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return "", "", false, fmt.Errorf(messages.EnvfileExpectedKeyValue)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return key, "", true, nil
	}

	quote := value[0]
	if quote != '"' && quote != '\'' {
		if idx := strings.Index(value, " #"); idx >= 0 {
			value = strings.TrimSpace(value[:idx])
		}
		return key, value, true, nil
	}

	end := closingQuote(value, quote)
	if end < 0 {
		return "", "", false, fmt.Errorf(messages.EnvfileUnterminatedQuoted)
	}
	rest := strings.TrimSpace(value[end+1:])
	if rest != "" && !strings.HasPrefix(rest, "#") {
		return "", "", false, fmt.Errorf(messages.EnvfileInvalidQuotedSuffix)
	}
	inner := value[1:end]
	if quote == '"' {
		inner = unescape(inner)
	}
	return key, inner, true, nil
}

// closingQuote returns the index of the quote that terminates value, honoring
// backslash escapes inside double quotes.
func closingQuote(value string, quote byte) int {
	for i := 1; i < len(value); i++ {
		switch {
		case quote == '"' && value[i] == '\\':
			i++
		case value[i] == quote:
			return i
		}
	}
	return -1
}

var unescaper = strings.NewReplacer(`\\`, `\`, `\"`, `"`, `\n`, "\n", `\r`, "\r")

func unescape(s string) string {
	return unescaper.Replace(s)
}
