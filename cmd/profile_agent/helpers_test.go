package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jonathan/profile-architect/internal/config"
	"github.com/jonathan/profile-architect/internal/llm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// MockLLMClient is a mock implementation of llm.Client for testing
type MockLLMClient struct {
	mu        sync.Mutex
	responses []string
	err       error
	requests  []*llm.Request
}

func (m *MockLLMClient) Generate(_ context.Context, req *llm.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "", &llm.TransportError{Message: "no response queued"}
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

func (m *MockLLMClient) GetModel(llm.ModelTier) string { return "mock-model" }

func (m *MockLLMClient) Close() error { return nil }

func (m *MockLLMClient) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

const generatedJSON = `{
  "oneLinePositioning": "Product leader who ships",
  "executiveSummary": "Five years leading launches at Acme Corp.",
  "sections": [
    {"title": "Experience", "content": "Acme Corp, Senior PM"},
    {"title": "Education", "content": "BSc Computer Science"}
  ],
  "skills": ["Roadmapping", "Discovery"],
  "atsVersion": "JANE DOE\nProduct Manager"
}`

const discoveryYAML = `target_role: Senior Product Manager
usage: [resume, linkedin]
audience: Hiring managers at fintech startups
job_description: Lead the payments roadmap.
`

const personalJSON = `{"fullName": "Jane Doe", "occupation": "Product Manager", "email": "jane@example.com"}`

// useMockClient swaps the model client factory for the duration of the test.
func useMockClient(t *testing.T, responses ...string) *MockLLMClient {
	t.Helper()
	client := &MockLLMClient{responses: responses}
	previous := newLLMClient
	newLLMClient = func(context.Context, *config.Config) (llm.Client, error) {
		return client, nil
	}
	t.Cleanup(func() { newLLMClient = previous })
	return client
}

// writeFile creates name under dir with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// resetFlags returns every flag to its default so commands can run repeatedly in one process.
// Slice flags are emptied; tests that rely on them pass them explicitly.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// runCLI executes the root command with args and returns combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	settings = config.Config{}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}
