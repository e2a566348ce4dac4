package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/autoclouddeploy/archmap/pkg/genai"
	"github.com/autoclouddeploy/archmap/pkg/pipeline"
	"github.com/autoclouddeploy/archmap/pkg/source/github"
	"github.com/autoclouddeploy/archmap/pkg/terraform"
)

func init() {
	// Keep diagram retries fast in tests.
	genai.DiagramRetryDelay = time.Millisecond
}

const validXML = `<mxfile><diagram name="test">
	<mxGraphModel><root>
		<mxCell id="vpc" value="VPC" vertex="1"><mxGeometry x="0" y="0" width="400" height="400"/></mxCell>
	</root></mxGraphModel>
</diagram></mxfile>`

const instructionJSON = `{"resources":[{"type":"aws_vpc","name":"main"}]}`

// promptGenerator answers diagram and instruction prompts by inspecting the
// prompt text, the way the real model endpoint is driven.
type promptGenerator struct {
	diagramErr     error
	instructionErr error
	calls          []string
}

func (g *promptGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "draw.io XML") {
		g.calls = append(g.calls, "diagram")
		return validXML, g.diagramErr
	}
	g.calls = append(g.calls, "instruction")
	return instructionJSON, g.instructionErr
}

func (g *promptGenerator) Model() string { return "fake-model" }
func (g *promptGenerator) Close() error  { return nil }

type stubFetcher struct {
	repos []github.LocalRepo
	err   error
}

func (s *stubFetcher) Fetch(ctx context.Context, opts github.FetchOptions) ([]github.LocalRepo, error) {
	return s.repos, s.err
}

type stubValidator struct {
	invalid map[string]bool
	err     error
}

func (s *stubValidator) Validate(ctx context.Context, dir string) (*terraform.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.invalid[filepath.Base(dir)] {
		return &terraform.Result{Valid: false, Diagnostics: "invalid"}, nil
	}
	return &terraform.Result{Valid: true, Source: `resource "aws_vpc" "main" {}`}, nil
}

// cloneRepo lays out a fake cloned repository with a README.
func cloneRepo(t *testing.T, root, fullName string, withReadme bool) github.LocalRepo {
	t.Helper()
	path := filepath.Join(root, github.RepoDirName(fullName))
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
	if withReadme {
		readme := []byte("# " + fullName + "\n\nCreates a VPC.")
		if err := os.WriteFile(filepath.Join(path, "README.md"), readme, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return github.LocalRepo{FullName: fullName, Path: path}
}

func TestBuilderBuild(t *testing.T) {
	work := t.TempDir()
	out := t.TempDir()

	repos := []github.LocalRepo{
		cloneRepo(t, work, "acme/vpc", true),
		cloneRepo(t, work, "acme/no-readme", false),
		cloneRepo(t, work, "acme/broken", true),
	}
	gen := &promptGenerator{}
	b := NewBuilder(
		&stubFetcher{repos: repos},
		&stubValidator{invalid: map[string]bool{"acme_broken": true}},
		gen, nil,
	)

	stats, err := b.Build(context.Background(), BuildOptions{Query: "terraform", OutDir: out})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if stats.Fetched != 3 || stats.Pairs != 1 || stats.Skipped != 2 {
		t.Errorf("stats = %+v, want fetched 3, pairs 1, skipped 2", stats)
	}

	pair := filepath.Join(out, "acme_vpc")
	for _, name := range []string{CodeFile, DiagramFile, InstructionFile} {
		if _, err := os.Stat(filepath.Join(pair, name)); err != nil {
			t.Errorf("missing %s in pair directory: %v", name, err)
		}
	}
	code, err := os.ReadFile(filepath.Join(pair, CodeFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(code), "aws_vpc") {
		t.Errorf("code.tf = %q, want validated source", code)
	}

	// Skipped repos leave no pair directory behind.
	if _, err := os.Stat(filepath.Join(out, "acme_broken")); !os.IsNotExist(err) {
		t.Error("invalid repository should not produce a pair")
	}
}

func TestBuilderBuildKeepsPairWithoutDiagram(t *testing.T) {
	work := t.TempDir()
	out := t.TempDir()

	gen := &promptGenerator{diagramErr: context.DeadlineExceeded}
	b := NewBuilder(
		&stubFetcher{repos: []github.LocalRepo{cloneRepo(t, work, "acme/vpc", true)}},
		&stubValidator{}, gen, nil,
	)

	stats, err := b.Build(context.Background(), BuildOptions{Query: "terraform", OutDir: out})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if stats.Pairs != 1 {
		t.Fatalf("Pairs = %d, want 1", stats.Pairs)
	}

	pair := filepath.Join(out, "acme_vpc")
	if _, err := os.Stat(filepath.Join(pair, CodeFile)); err != nil {
		t.Error("code.tf should survive diagram failure")
	}
	if _, err := os.Stat(filepath.Join(pair, DiagramFile)); !os.IsNotExist(err) {
		t.Error("diagram.xml should be absent after generation failure")
	}
}

func TestBuilderBuildRequiresOutDir(t *testing.T) {
	b := NewBuilder(&stubFetcher{}, &stubValidator{}, &promptGenerator{}, nil)
	if _, err := b.Build(context.Background(), BuildOptions{Query: "terraform"}); err == nil {
		t.Error("expected error for missing output directory")
	}
}

func TestUnifierUnify(t *testing.T) {
	dir := t.TempDir()

	// Pair missing both diagram.xml and instruction.json.
	codeOnly := filepath.Join(dir, "acme_vpc")
	if err := os.MkdirAll(codeOnly, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(codeOnly, CodeFile), []byte(`resource "aws_vpc" "main" {}`), 0o644); err != nil {
		t.Fatal(err)
	}

	// Pair missing only instruction.json.
	xmlOnly := filepath.Join(dir, "acme_s3")
	if err := os.MkdirAll(xmlOnly, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(xmlOnly, DiagramFile), []byte(validXML), 0o644); err != nil {
		t.Fatal(err)
	}

	// Complete pair, must be left alone.
	complete := filepath.Join(dir, "acme_eks")
	if err := os.MkdirAll(complete, 0o755); err != nil {
		t.Fatal(err)
	}
	original := []byte(`{"done":true}`)
	if err := os.WriteFile(filepath.Join(complete, DiagramFile), []byte(validXML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(complete, InstructionFile), original, 0o644); err != nil {
		t.Fatal(err)
	}

	u := NewUnifier(&promptGenerator{}, pipeline.NewRunner(nil, nil, nil), nil)
	stats, err := u.Unify(context.Background(), dir)
	if err != nil {
		t.Fatalf("Unify error: %v", err)
	}
	if stats.Scanned != 3 {
		t.Errorf("Scanned = %d, want 3", stats.Scanned)
	}
	if stats.Diagrams != 1 {
		t.Errorf("Diagrams = %d, want 1", stats.Diagrams)
	}
	if stats.Instructions != 2 {
		t.Errorf("Instructions = %d, want 2", stats.Instructions)
	}
	if len(stats.Failed) != 0 {
		t.Errorf("Failed = %v, want none", stats.Failed)
	}

	for _, pair := range []string{codeOnly, xmlOnly} {
		data, err := os.ReadFile(filepath.Join(pair, InstructionFile))
		if err != nil {
			t.Fatalf("missing instruction.json in %s: %v", pair, err)
		}
		if !strings.Contains(string(data), "schema_version") {
			t.Errorf("instruction.json in %s should hold a converted document", pair)
		}
	}

	// The complete pair keeps its original instruction.
	data, err := os.ReadFile(filepath.Join(complete, InstructionFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(original) {
		t.Error("existing instruction.json must not be overwritten")
	}
}

func TestUnifierUnifyNoGenerator(t *testing.T) {
	dir := t.TempDir()
	pair := filepath.Join(dir, "acme_vpc")
	if err := os.MkdirAll(pair, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pair, CodeFile), []byte(`resource "x" "y" {}`), 0o644); err != nil {
		t.Fatal(err)
	}

	u := NewUnifier(nil, pipeline.NewRunner(nil, nil, nil), nil)
	stats, err := u.Unify(context.Background(), dir)
	if err != nil {
		t.Fatalf("Unify error: %v", err)
	}
	if stats.Diagrams != 0 || stats.Instructions != 0 {
		t.Errorf("stats = %+v, want nothing generated without a generator", stats)
	}
	if len(stats.Failed) != 0 {
		t.Errorf("Failed = %v, missing generator is a skip, not a failure", stats.Failed)
	}
}

func TestUnifierUnifyMissingDir(t *testing.T) {
	u := NewUnifier(nil, pipeline.NewRunner(nil, nil, nil), nil)
	if _, err := u.Unify(context.Background(), filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected error for missing dataset directory")
	}
}

var _ genai.Generator = (*promptGenerator)(nil)
