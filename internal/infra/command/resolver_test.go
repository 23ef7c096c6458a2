package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpsync/internal/domain"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.ParsedCommand
	}{
		{
			name: "executable only",
			raw:  "npx",
			want: domain.ParsedCommand{Executable: "npx", Args: []string{}},
		},
		{
			name: "executable with arguments",
			raw:  "npx -y @modelcontextprotocol/server-filesystem /tmp",
			want: domain.ParsedCommand{
				Executable: "npx",
				Args:       []string{"-y", "@modelcontextprotocol/server-filesystem", "/tmp"},
			},
		},
		{
			name: "quoted argument keeps embedded spaces",
			raw:  `run "hello world"`,
			want: domain.ParsedCommand{Executable: "run", Args: []string{"hello world"}},
		},
		{
			name: "single quotes and escapes",
			raw:  `srv --label 'a b' c\ d`,
			want: domain.ParsedCommand{Executable: "srv", Args: []string{"--label", "a b", "c d"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Executable, got.Executable)
			assert.Equal(t, tt.want.Args, got.Args)
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	raw := `uvx weather-server --key "a b c"`
	first, err := Parse(raw)
	require.NoError(t, err)
	second, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty string", raw: ""},
		{name: "whitespace only", raw: "   "},
		{name: "unbalanced quote", raw: `run "unterminated`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			require.Error(t, err)
			assert.True(t, domain.IsCode(err, domain.CodeInvalidCommand))
		})
	}
}

func TestResolveSecrets_BothSpellings(t *testing.T) {
	t.Setenv("API_KEY", "abc123")

	resolved, missing := ResolveSecrets("srv --key YOUR__API_KEY --alt <YOUR_API_KEY>")
	assert.Equal(t, "srv --key abc123 --alt abc123", resolved)
	assert.Empty(t, missing)
}

func TestResolveSecrets_Idempotent(t *testing.T) {
	t.Setenv("API_KEY", "abc123")

	resolved, _ := ResolveSecrets("srv --key YOUR__API_KEY")
	assert.Equal(t, "srv --key abc123", resolved)

	again, missing := ResolveSecrets(resolved)
	assert.Equal(t, resolved, again)
	assert.Empty(t, missing)
}

func TestResolveSecrets_MissingLeftIntact(t *testing.T) {
	raw := "srv --key YOUR__MCPSYNC_TEST_UNSET --alt <YOUR_MCPSYNC_TEST_UNSET>"

	resolved, missing := ResolveSecrets(raw)
	assert.Equal(t, raw, resolved)
	assert.Equal(t, []string{"MCPSYNC_TEST_UNSET"}, missing)
}

func TestResolveSecrets_MixedPresence(t *testing.T) {
	t.Setenv("TOKEN_A", "first")

	resolved, missing := ResolveSecrets("srv YOUR__TOKEN_A <YOUR_TOKEN_B>")
	assert.Equal(t, "srv first <YOUR_TOKEN_B>", resolved)
	assert.Equal(t, []string{"TOKEN_B"}, missing)
}

func TestResolveSecrets_NoPlaceholders(t *testing.T) {
	resolved, missing := ResolveSecrets("plain command --flag value")
	assert.Equal(t, "plain command --flag value", resolved)
	assert.Nil(t, missing)
}

func TestResolveSecrets_LowercaseNotMatched(t *testing.T) {
	raw := "srv YOUR__lower <YOUR_mixedCase>"
	resolved, missing := ResolveSecrets(raw)
	assert.Equal(t, raw, resolved)
	assert.Empty(t, missing)
}
