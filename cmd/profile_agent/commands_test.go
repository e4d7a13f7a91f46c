package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/profile-architect/internal/config"
	"github.com/jonathan/profile-architect/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readProfile(t *testing.T, path string) types.GeneratedProfile {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc types.GeneratedProfile
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func generateInputs(t *testing.T) (dir, discovery, personal, content string) {
	t.Helper()
	dir = t.TempDir()
	discovery = writeFile(t, dir, "discovery.yaml", discoveryYAML)
	personal = writeFile(t, dir, "personal.json", personalJSON)
	content = writeFile(t, dir, "notes.md", "# Notes\n\nLed the payments launch at Acme Corp for three years.\n")
	return dir, discovery, personal, content
}

func TestGenerateCommand_WritesProfile(t *testing.T) {
	client := useMockClient(t, generatedJSON)
	dir, discovery, personal, content := generateInputs(t)
	out := filepath.Join(dir, "out", "profile.json")

	output, err := runCLI(t, "generate", "-d", discovery, "-p", personal, "--content", content, "-o", out)
	require.NoError(t, err, output)

	assert.Contains(t, output, "Profile written to")
	doc := readProfile(t, out)
	assert.Equal(t, "Product leader who ships", doc.OneLinePositioning)
	assert.Len(t, doc.Sections, 2)

	require.Equal(t, 1, client.calls())
	prompt := client.requests[0].Text()
	assert.Contains(t, prompt, "Senior Product Manager")
	assert.Contains(t, prompt, "payments launch")
	assert.True(t, client.requests[0].WantsJSON())
}

func TestGenerateCommand_Attachment(t *testing.T) {
	client := useMockClient(t, generatedJSON)
	dir, discovery, personal, _ := generateInputs(t)
	pdf := writeFile(t, dir, "cv.pdf", "%PDF-1.4 fake")

	output, err := runCLI(t, "generate", "-d", discovery, "-p", personal, "-a", pdf, "-o", filepath.Join(dir, "profile.json"))
	require.NoError(t, err, output)

	require.Equal(t, 1, client.calls())
	blobs := client.requests[0].Blobs()
	require.Len(t, blobs, 1)
	assert.Equal(t, "application/pdf", blobs[0].MIMEType)
}

func TestGenerateCommand_InsufficientContext(t *testing.T) {
	client := useMockClient(t, generatedJSON)
	dir, discovery, personal, _ := generateInputs(t)
	short := writeFile(t, dir, "short.txt", "PM")

	_, err := runCLI(t, "generate", "-d", discovery, "-p", personal, "--content", short, "-o", filepath.Join(dir, "profile.json"))
	require.Error(t, err)
	assert.Zero(t, client.calls(), "nothing is sent without enough context")
	assert.NoFileExists(t, filepath.Join(dir, "profile.json"))
}

func TestGenerateCommand_MissingDiscovery(t *testing.T) {
	useMockClient(t)
	dir, _, personal, content := generateInputs(t)

	_, err := runCLI(t, "generate", "-p", personal, "--content", content, "-o", filepath.Join(dir, "profile.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--discovery is required")
}

func TestGenerateCommand_RequiresAPIKey(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")
	dir, discovery, personal, content := generateInputs(t)

	_, err := runCLI(t, "generate", "-d", discovery, "-p", personal, "--content", content, "-o", filepath.Join(dir, "profile.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvAPIKey)
}

func TestGenerateCommand_ConfigFile(t *testing.T) {
	client := useMockClient(t, generatedJSON)
	dir, discovery, personal, content := generateInputs(t)
	cfgPath := writeFile(t, dir, "config.yaml", "discovery: "+discovery+"\npersonal: "+personal+"\ncontent: "+content+"\n")
	out := filepath.Join(dir, "profile.json")

	output, err := runCLI(t, "--config", cfgPath, "generate", "-o", out)
	require.NoError(t, err, output)
	assert.Equal(t, 1, client.calls())
	assert.FileExists(t, out)
}

func TestGenerateCommand_MalformedOutput(t *testing.T) {
	useMockClient(t, `{"oneLinePositioning": "missing everything else"}`)
	dir, discovery, personal, content := generateInputs(t)

	_, err := runCLI(t, "generate", "-d", discovery, "-p", personal, "--content", content, "-o", filepath.Join(dir, "profile.json"))
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "profile.json"))
}

func writeProfileFixture(t *testing.T, dir string, coverLetter string) string {
	t.Helper()
	var doc types.GeneratedProfile
	require.NoError(t, json.Unmarshal([]byte(generatedJSON), &doc))
	doc.CoverLetter = coverLetter
	path := filepath.Join(dir, "profile.json")
	require.NoError(t, writeDocument(path, &doc))
	return path
}

func TestRefineCommand_KeepsCoverLetter(t *testing.T) {
	refined := strings.Replace(generatedJSON, "Product leader who ships", "Payments product leader", 1)
	client := useMockClient(t, refined)
	dir := t.TempDir()
	in := writeProfileFixture(t, dir, "Dear team,\n\nI would love to join.")
	personal := writeFile(t, dir, "personal.json", personalJSON)

	output, err := runCLI(t, "refine", "-i", in, "-p", personal, "-m", "focus on payments")
	require.NoError(t, err, output)

	doc := readProfile(t, in)
	assert.Equal(t, "Payments product leader", doc.OneLinePositioning)
	assert.Equal(t, "Dear team,\n\nI would love to join.", doc.CoverLetter)
	require.Equal(t, 1, client.calls())
	assert.Contains(t, client.requests[0].Text(), "focus on payments")
}

func TestRefineCommand_FailureLeavesInput(t *testing.T) {
	client := useMockClient(t)
	client.err = &os.PathError{Op: "dial", Path: "api", Err: os.ErrDeadlineExceeded}
	dir := t.TempDir()
	in := writeProfileFixture(t, dir, "")
	before, err := os.ReadFile(in)
	require.NoError(t, err)
	personal := writeFile(t, dir, "personal.json", personalJSON)

	_, err = runCLI(t, "refine", "-i", in, "-p", personal, "-m", "shorter")
	require.Error(t, err)

	after, err := os.ReadFile(in)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRefineCommand_RequiresInstruction(t *testing.T) {
	useMockClient(t)
	dir := t.TempDir()
	in := writeProfileFixture(t, dir, "")

	_, err := runCLI(t, "refine", "-i", in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instruction")
}

func TestCoverLetterCommand(t *testing.T) {
	letter := "Dear Hiring Manager,\n\nI lead payments products.\n\nBest,\nJane"
	client := useMockClient(t, letter)
	dir := t.TempDir()
	in := writeProfileFixture(t, dir, "Old letter")
	discovery := writeFile(t, dir, "discovery.yaml", discoveryYAML)
	personal := writeFile(t, dir, "personal.json", personalJSON)
	out := filepath.Join(dir, "with-letter.json")
	text := filepath.Join(dir, "letter.txt")

	output, err := runCLI(t, "cover-letter", "-i", in, "-o", out, "--text", text, "-d", discovery, "-p", personal)
	require.NoError(t, err, output)

	doc := readProfile(t, out)
	assert.Equal(t, letter, doc.CoverLetter)
	assert.Equal(t, "Old letter", readProfile(t, in).CoverLetter, "input untouched when --out is given")

	data, err := os.ReadFile(text)
	require.NoError(t, err)
	assert.Equal(t, letter+"\n", string(data))

	require.Equal(t, 1, client.calls())
	assert.Contains(t, client.requests[0].Text(), "Lead the payments roadmap.")
}

func TestPatchCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeProfileFixture(t, dir, "")

	output, err := runCLI(t, "patch", "-i", in, "--summary", "--content", "New summary")
	require.NoError(t, err, output)
	assert.Equal(t, "New summary", readProfile(t, in).ExecutiveSummary)

	output, err = runCLI(t, "patch", "-i", in, "--section", "1", "--html", "MSc<br>BSc")
	require.NoError(t, err, output)
	doc := readProfile(t, in)
	assert.Equal(t, "MSc\nBSc", doc.Sections[1].Content)
	assert.Equal(t, "Education", doc.Sections[1].Title)

	file := writeFile(t, dir, "positioning.txt", "Builder of payment rails")
	output, err = runCLI(t, "patch", "-i", in, "--positioning", "--content-file", file)
	require.NoError(t, err, output)
	assert.Equal(t, "Builder of payment rails", readProfile(t, in).OneLinePositioning)
}

func TestPatchCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	in := writeProfileFixture(t, dir, "")

	_, err := runCLI(t, "patch", "-i", in, "--section", "7", "--content", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	_, err = runCLI(t, "patch", "-i", in, "--content", "x")
	require.Error(t, err)

	_, err = runCLI(t, "patch", "-i", in, "--summary")
	require.Error(t, err)

	_, err = runCLI(t, "patch", "-i", in, "--summary", "--positioning", "--content", "x")
	require.Error(t, err)
}

func TestExportCommand_TextFormats(t *testing.T) {
	dir := t.TempDir()
	in := writeProfileFixture(t, dir, "")
	personal := writeFile(t, dir, "personal.json", personalJSON)
	outDir := filepath.Join(dir, "exports")

	output, err := runCLI(t, "export", "-i", in, "-p", personal, "--out-dir", outDir, "-f", "txt,doc,html")
	require.NoError(t, err, output)

	txt, err := os.ReadFile(filepath.Join(outDir, "Jane_Doe_Profile.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(txt), "JANE DOE")

	word, err := os.ReadFile(filepath.Join(outDir, "Jane_Doe_Profile.doc"))
	require.NoError(t, err)
	assert.Contains(t, string(word), "Five years leading launches")

	html, err := os.ReadFile(filepath.Join(outDir, "Jane_Doe_Profile.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Target Competencies")
}

func TestExportCommand_UnknownFormat(t *testing.T) {
	dir := t.TempDir()
	in := writeProfileFixture(t, dir, "")
	personal := writeFile(t, dir, "personal.json", personalJSON)

	_, err := runCLI(t, "export", "-i", in, "-p", personal, "--out-dir", dir, "-f", "png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	valid := writeProfileFixture(t, dir, "")

	output, err := runCLI(t, "validate", "-i", valid)
	require.NoError(t, err, output)
	assert.Contains(t, output, "PROFILE MATCHES SCHEMA")

	invalid := writeFile(t, dir, "invalid.json", `{"oneLinePositioning": 42}`)
	output, err = runCLI(t, "validate", "-i", invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match the schema")
	assert.Contains(t, output, "schema errors")
}

func TestValidateCommand_CustomSchema(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.json", `{"type": "object", "required": ["name"]}`)
	doc := writeFile(t, dir, "doc.json", `{"title": "x"}`)

	output, err := runCLI(t, "validate", "-i", doc, "--schema", schema)
	require.Error(t, err)
	assert.Contains(t, output, "name")
}
