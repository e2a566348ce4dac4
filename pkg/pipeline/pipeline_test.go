package pipeline

import (
	"context"
	"testing"

	"github.com/autoclouddeploy/archmap/pkg/cache"
	"github.com/autoclouddeploy/archmap/pkg/errors"
)

const sampleXML = `<mxfile><diagram name="infra">
	<mxGraphModel><root>
		<mxCell id="vpc" value="VPC" vertex="1"><mxGeometry x="0" y="0" width="500" height="500"/></mxCell>
		<mxCell id="sub" value="Subnet" vertex="1"><mxGeometry x="20" y="20" width="200" height="200"/></mxCell>
		<mxCell id="db" value="Database" vertex="1"><mxGeometry x="900" y="900" width="60" height="60"/></mxCell>
		<mxCell id="e1" edge="1" source="sub" target="db"/>
	</root></mxGraphModel>
</diagram></mxfile>`

func TestRunnerConvert(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	result, err := runner.Convert(context.Background(), []byte(sampleXML), Options{})
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}

	doc := result.Document
	if doc == nil {
		t.Fatal("Convert returned nil document")
	}
	if doc.DiagramName != "infra" {
		t.Errorf("DiagramName = %q, want infra", doc.DiagramName)
	}
	if len(doc.Architecture) != 2 {
		t.Errorf("got %d roots, want 2", len(doc.Architecture))
	}

	if result.ContentHash == "" {
		t.Error("ContentHash should be set")
	}
	if result.CacheInfo.DocumentHit {
		t.Error("first run should not be a cache hit")
	}
	if result.Stats.ElementCount != 3 {
		t.Errorf("ElementCount = %d, want 3", result.Stats.ElementCount)
	}
	if result.Stats.RootCount != 2 {
		t.Errorf("RootCount = %d, want 2", result.Stats.RootCount)
	}
	if result.Stats.ConnectionCount != 1 {
		t.Errorf("ConnectionCount = %d, want 1", result.Stats.ConnectionCount)
	}
}

func TestRunnerConvertUsesCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	ctx := context.Background()

	first, err := runner.Convert(ctx, []byte(sampleXML), Options{})
	if err != nil {
		t.Fatalf("first Convert error: %v", err)
	}
	if first.CacheInfo.DocumentHit {
		t.Error("first run should be a miss")
	}

	second, err := runner.Convert(ctx, []byte(sampleXML), Options{})
	if err != nil {
		t.Fatalf("second Convert error: %v", err)
	}
	if !second.CacheInfo.DocumentHit {
		t.Error("second run should be a cache hit")
	}
	if second.ContentHash != first.ContentHash {
		t.Error("content hash should be stable for identical input")
	}
	if second.Stats.ElementCount != first.Stats.ElementCount {
		t.Errorf("cached ElementCount = %d, want %d",
			second.Stats.ElementCount, first.Stats.ElementCount)
	}

	// Refresh bypasses the cache
	third, err := runner.Convert(ctx, []byte(sampleXML), Options{Refresh: true})
	if err != nil {
		t.Fatalf("refresh Convert error: %v", err)
	}
	if third.CacheInfo.DocumentHit {
		t.Error("refresh run should bypass the cache")
	}
}

func TestRunnerConvertParseError(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	_, err := runner.Convert(context.Background(), []byte("<mxfile><broken"), Options{})
	if err == nil {
		t.Fatal("expected error for malformed XML")
	}
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeParse)
	}
}

func TestOptionsValidateIdempotent(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults error: %v", err)
	}
	if opts.Logger == nil {
		t.Fatal("Logger default should be set")
	}
	logger := opts.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second ValidateAndSetDefaults error: %v", err)
	}
	if opts.Logger != logger {
		t.Error("repeated validation should not replace the logger")
	}
}
