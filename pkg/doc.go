// Package pkg provides the core libraries for archmap.
//
// # Overview
//
// Archmap turns draw.io architecture diagrams into hierarchical JSON
// documents and builds instruction/code/diagram training datasets from real
// Terraform repositories. The pkg directory is organized into:
//
//   - [diagram] - Core conversion (decode, containment resolution, assembly)
//   - [pipeline] - Orchestration of the conversion with caching and stats
//   - [genai] - Gemini-backed diagram and instruction generation
//   - [terraform] - Terraform module combination and validation
//   - [dataset] - Dataset builder and unifier
//   - [github] - GitHub search, clone, and OAuth device flow
//   - [cache], [httputil], [integrations] - Infrastructure (caching, HTTP)
//   - [config], [errors], [observability], [session] - Ambient concerns
//
// # Architecture
//
// The typical data flow through archmap:
//
//	draw.io XML
//	     ↓
//	[diagram] package (decode + resolve containment)
//	     ↓
//	[pipeline] package (cache, stats, hooks)
//	     ↓
//	hierarchical JSON document (schema 3.0)
//
// Dataset builds run the flow in reverse as well: Terraform code is turned
// into diagram XML by [genai], validated by [terraform], and paired with an
// instruction distilled from the repository README.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/diagram/...    # Specific package
//	go test -run Example         # Examples only
//
// [diagram]: https://pkg.go.dev/github.com/autoclouddeploy/archmap/pkg/diagram
// [pipeline]: https://pkg.go.dev/github.com/autoclouddeploy/archmap/pkg/pipeline
// [genai]: https://pkg.go.dev/github.com/autoclouddeploy/archmap/pkg/genai
// [terraform]: https://pkg.go.dev/github.com/autoclouddeploy/archmap/pkg/terraform
// [dataset]: https://pkg.go.dev/github.com/autoclouddeploy/archmap/pkg/dataset
// [github]: https://pkg.go.dev/github.com/autoclouddeploy/archmap/pkg/source/github
// [cache]: https://pkg.go.dev/github.com/autoclouddeploy/archmap/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/autoclouddeploy/archmap/pkg/httputil
// [integrations]: https://pkg.go.dev/github.com/autoclouddeploy/archmap/pkg/integrations
// [config]: https://pkg.go.dev/github.com/autoclouddeploy/archmap/pkg/config
// [errors]: https://pkg.go.dev/github.com/autoclouddeploy/archmap/pkg/errors
// [observability]: https://pkg.go.dev/github.com/autoclouddeploy/archmap/pkg/observability
// [session]: https://pkg.go.dev/github.com/autoclouddeploy/archmap/pkg/session
package pkg
