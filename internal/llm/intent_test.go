package llm

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompleter returns canned responses and counts calls.
type fakeCompleter struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompleter) Complete(context.Context, string, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestAnalyzer_Analyze(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{response: `{
		"goal": "deploy web application with auto-scaling",
		"capabilities": ["deployment", "aws"],
		"domain": "cloud-infrastructure",
		"parameters": {"platform": "aws"},
		"urgency": "medium",
		"keywords": ["deploy", "aws"]
	}`}

	a := NewAnalyzer(hclog.NewNullLogger(), completer)
	intent := a.Analyze(context.Background(), "deploy a web app on aws with autoscaling")

	assert.Equal(t, "deploy web application with auto-scaling", intent.Goal)
	assert.Equal(t, []string{"deployment", "aws"}, intent.Capabilities)
	assert.Equal(t, "cloud-infrastructure", intent.Domain)
	assert.Equal(t, "medium", intent.Urgency)
}

func TestAnalyzer_Analyze_StripsMarkdownFences(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{response: "```json\n{\"goal\": \"check weather\", \"domain\": \"weather\"}\n```"}
	a := NewAnalyzer(hclog.NewNullLogger(), completer)

	intent := a.Analyze(context.Background(), "what is the weather")
	assert.Equal(t, "check weather", intent.Goal)
	assert.Equal(t, "weather", intent.Domain)
}

func TestAnalyzer_Analyze_Fallbacks(t *testing.T) {
	t.Parallel()

	prompt := "deploy a web app on aws with autoscaling enabled please"
	expected := FallbackIntent(prompt)

	testCases := []struct {
		name      string
		completer *fakeCompleter
	}{
		{name: "service error", completer: &fakeCompleter{err: assert.AnError}},
		{name: "non-JSON response", completer: &fakeCompleter{response: "sorry, I cannot help"}},
		{name: "malformed JSON", completer: &fakeCompleter{response: `{"goal": `}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a := NewAnalyzer(hclog.NewNullLogger(), tc.completer)
			intent := a.Analyze(context.Background(), prompt)
			require.Equal(t, expected, intent)
		})
	}
}

func TestFallbackIntent(t *testing.T) {
	t.Parallel()

	intent := FallbackIntent("deploy a web app on aws with autoscaling")

	assert.Equal(t, "deploy a web app on aws with autoscaling", intent.Goal)
	assert.Empty(t, intent.Capabilities)
	assert.Equal(t, "general", intent.Domain)
	assert.Empty(t, intent.Parameters)
	assert.Equal(t, "medium", intent.Urgency)
	assert.Equal(t, []string{"deploy", "a", "web", "app", "on"}, intent.Keywords)
}

func TestFallbackIntent_ShortPrompt(t *testing.T) {
	t.Parallel()

	intent := FallbackIntent("check weather")
	assert.Equal(t, []string{"check", "weather"}, intent.Keywords)
}
