package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/autoclouddeploy/archmap/pkg/pipeline"
	"github.com/autoclouddeploy/archmap/pkg/terraform"
)

const validXML = `<mxfile><diagram name="api">
	<mxGraphModel><root>
		<mxCell id="vpc" value="VPC" vertex="1"><mxGeometry x="0" y="0" width="400" height="400"/></mxCell>
		<mxCell id="sub" value="Subnet" vertex="1"><mxGeometry x="20" y="20" width="100" height="100"/></mxCell>
	</root></mxGraphModel>
</diagram></mxfile>`

type fakeGenerator struct {
	response string
	err      error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return f.response, f.err
}
func (f *fakeGenerator) Model() string { return "fake-model" }
func (f *fakeGenerator) Close() error  { return nil }

type stubValidator struct {
	result *terraform.Result
	err    error
	dirs   []string
}

func (s *stubValidator) Validate(ctx context.Context, dir string) (*terraform.Result, error) {
	s.dirs = append(s.dirs, dir)
	return s.result, s.err
}

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	srv := NewServer(pipeline.NewRunner(nil, nil, nil), opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("response should carry a request ID")
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if got := resp.Header.Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request ID = %q, want passthrough of abc-123", got)
	}
}

func TestConvert(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/convert", "application/xml", strings.NewReader(validXML))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var doc struct {
		SchemaVersion string `json:"schema_version"`
		Architecture  []struct {
			ID       string `json:"id"`
			Children []any  `json:"children"`
		} `json:"architecture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if doc.SchemaVersion != "3.0" {
		t.Errorf("schema_version = %q, want 3.0", doc.SchemaVersion)
	}
	if len(doc.Architecture) != 1 || doc.Architecture[0].ID != "vpc" {
		t.Errorf("architecture = %+v, want single vpc root", doc.Architecture)
	}
}

func TestConvertBadXML(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/convert", "application/xml", strings.NewReader("<mxfile"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Code != "PARSE_ERROR" {
		t.Errorf("code = %q, want PARSE_ERROR", body.Code)
	}
}

func TestConvertEmptyBody(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/convert", "application/xml", strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestTerraformToXML(t *testing.T) {
	ts := newTestServer(t, WithGenerator(&fakeGenerator{response: validXML}))

	body := `{"terraform": "resource \"aws_vpc\" \"main\" {}"}`
	resp, err := http.Post(ts.URL+"/terraform-to-xml", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/xml" {
		t.Errorf("Content-Type = %q, want application/xml", ct)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != validXML {
		t.Errorf("body = %q, want the generated XML", data)
	}
}

func TestTerraformToXMLNoGenerator(t *testing.T) {
	ts := newTestServer(t)

	body := `{"terraform": "resource {}"}`
	resp, err := http.Post(ts.URL+"/terraform-to-xml", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestTerraformToXMLMissingField(t *testing.T) {
	ts := newTestServer(t, WithGenerator(&fakeGenerator{response: validXML}))

	resp, err := http.Post(ts.URL+"/terraform-to-xml", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestValidate(t *testing.T) {
	v := &stubValidator{result: &terraform.Result{Valid: true, Source: "combined"}}
	ts := newTestServer(t, WithValidator(v))

	body := `{"terraform": "resource \"aws_vpc\" \"main\" {}"}`
	resp, err := http.Post(ts.URL+"/validate", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var result terraform.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if !result.Valid {
		t.Error("Valid = false, want true")
	}
	if result.Source != "" {
		t.Error("Source should not be echoed back")
	}
	if len(v.dirs) != 1 {
		t.Fatalf("validator calls = %d, want 1", len(v.dirs))
	}
}

func TestValidateNoValidator(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/validate", "application/json", strings.NewReader(`{"terraform":"x"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := NewMetrics()
	ts := newTestServer(t, WithMetrics(m))

	// Generate some traffic first.
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "archmap_http_requests_total") {
		t.Error("metrics output should include archmap_http_requests_total")
	}
}
