package genai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoclouddeploy/archmap/pkg/errors"
)

const validXML = `<mxfile><diagram name="gen">
	<mxGraphModel><root>
		<mxCell id="vpc" value="VPC" vertex="1"><mxGeometry x="0" y="0" width="400" height="400"/></mxCell>
	</root></mxGraphModel>
</diagram></mxfile>`

// fakeGenerator replays scripted responses.
type fakeGenerator struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp string
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func (f *fakeGenerator) Model() string { return "fake-model" }
func (f *fakeGenerator) Close() error  { return nil }

func init() {
	// Keep retries fast in tests.
	DiagramRetryDelay = time.Millisecond
}

func TestDiagramFromTerraform(t *testing.T) {
	gen := &fakeGenerator{responses: []string{validXML}}

	xml, err := DiagramFromTerraform(context.Background(), gen, `resource "aws_vpc" "main" {}`)
	require.NoError(t, err)
	assert.Equal(t, validXML, xml)
	assert.Equal(t, 1, gen.calls)
}

func TestDiagramFromTerraformStripsFences(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"```xml\n" + validXML + "\n```"}}

	xml, err := DiagramFromTerraform(context.Background(), gen, "resource {}")
	require.NoError(t, err)
	assert.Equal(t, validXML, xml)
}

func TestDiagramFromTerraformRetriesInvalidXML(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"<mxfile><broken", "not xml at all", validXML}}

	xml, err := DiagramFromTerraform(context.Background(), gen, "resource {}")
	require.NoError(t, err)
	assert.Equal(t, validXML, xml)
	assert.Equal(t, 3, gen.calls)
}

func TestDiagramFromTerraformGivesUp(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"bad", "bad", "bad"}}

	_, err := DiagramFromTerraform(context.Background(), gen, "resource {}")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeGeneration))
	assert.Equal(t, 3, gen.calls)
}

func TestInstructionFromReadme(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"```json\n{\"vpc\": {\"cidr\": \"10.0.0.0/16\"}}\n```"}}

	instruction, err := InstructionFromReadme(context.Background(), gen, "acme/vpc", "# VPC module")
	require.NoError(t, err)
	assert.JSONEq(t, `{"vpc": {"cidr": "10.0.0.0/16"}}`, instruction)
}

func TestInstructionFromReadmeInvalidJSON(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"this is not json"}}

	_, err := InstructionFromReadme(context.Background(), gen, "acme/vpc", "# readme")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeGeneration))
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", "<mxfile/>", "<mxfile/>"},
		{"xml fence", "```xml\n<mxfile/>\n```", "<mxfile/>"},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"whitespace", "  \n<mxfile/>\n  ", "<mxfile/>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFences(tt.in))
		})
	}
}
