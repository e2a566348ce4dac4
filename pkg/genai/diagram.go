package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/autoclouddeploy/archmap/pkg/diagram"
	"github.com/autoclouddeploy/archmap/pkg/errors"
	"github.com/autoclouddeploy/archmap/pkg/observability"
)

const diagramPromptTemplate = `You are an expert cloud architect and a specialist in both Terraform HCL and the draw.io XML format.
Your task is to convert the following Terraform code into a complete, valid, and visually coherent draw.io XML file.

Analyze the resources, their relationships (e.g. a subnet inside a VPC, an instance in a subnet), and any explicit dependencies.
Create a visual representation of this architecture.
- Use appropriate AWS icons from the draw.io library (e.g. shape=mxgraph.aws4.group_vpc, resIcon=mxgraph.aws4.ec2).
- Arrange the elements logically with clear containment (e.g. resources inside subnets, subnets inside VPCs).
- Ensure the final output is a single, complete XML block that can be opened directly in draw.io.

The output MUST be only the raw XML content, starting with <?xml version="1.0" encoding="UTF-8"?> and enclosed in <mxfile>. Do not include any other text, explanations, or markdown code fences.

Terraform code:
---
%s
---
`

const instructionPromptTemplate = `You are an expert DevOps engineer specializing in Terraform. Your task is to act as a text-to-JSON converter.
Read the following README.md file for a Terraform module and generate a JSON object that represents the intended infrastructure.
This JSON will be used as an instruction set for another model to write the Terraform code.

The JSON output should be structured and hierarchical. Infer resource types, properties, and relationships from the text.
Focus on capturing the core components being created (e.g. VPC, subnets, EC2 instances, S3 buckets, IAM roles).

Here is the content of the README.md for the repository '%s':
---
%s
---

Generate the JSON instruction object now. The output must be ONLY the JSON object, nothing else.
`

// Invalid XML from the model is common enough that a couple of retries
// recovers most failures.
const diagramAttempts = 3

// DiagramRetryDelay is the pause between diagram generation attempts.
// Tests shorten it.
var DiagramRetryDelay = 5 * time.Second

// DiagramFromTerraform asks the generator to draw the given Terraform code as
// a draw.io diagram and returns the XML. The response is stripped of markdown
// fences and must decode as a draw.io document; invalid responses are retried
// up to three times with a fixed delay.
func DiagramFromTerraform(ctx context.Context, gen Generator, tfCode string) (string, error) {
	prompt := fmt.Sprintf(diagramPromptTemplate, tfCode)

	start := time.Now()
	observability.Pipeline().OnGenerateStart(ctx, gen.Model())

	xml, attempts, err := generateDiagram(ctx, gen, prompt)
	observability.Pipeline().OnGenerateComplete(ctx, gen.Model(), attempts, time.Since(start), err)
	return xml, err
}

func generateDiagram(ctx context.Context, gen Generator, prompt string) (string, int, error) {
	var lastErr error
	for attempt := 1; attempt <= diagramAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", attempt - 1, ctx.Err()
			case <-time.After(DiagramRetryDelay):
			}
		}

		raw, err := gen.Generate(ctx, prompt)
		if err != nil {
			lastErr = err
			continue
		}

		xml := stripFences(raw)
		if _, err := diagram.DecodeBytes([]byte(xml)); err != nil {
			lastErr = errors.Wrap(errors.ErrCodeGeneration, err, "model returned invalid diagram XML")
			continue
		}
		return xml, attempt, nil
	}
	return "", diagramAttempts, lastErr
}

// InstructionFromReadme asks the generator to distill a repository README into
// a structured JSON instruction object. The response is stripped of markdown
// fences and must be valid JSON.
func InstructionFromReadme(ctx context.Context, gen Generator, repoName, readme string) (string, error) {
	prompt := fmt.Sprintf(instructionPromptTemplate, repoName, readme)

	raw, err := gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	instruction := stripFences(raw)
	if !json.Valid([]byte(instruction)) {
		return "", errors.New(errors.ErrCodeGeneration, "model returned invalid instruction JSON")
	}
	return instruction, nil
}
