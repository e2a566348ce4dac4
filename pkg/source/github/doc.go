// Package github fetches source repositories from GitHub.
//
// # Overview
//
// The package has two layers:
//
//   - [Client] talks to the GitHub REST API: repository search, repository
//     metadata, and raw file content. Responses are cached on disk.
//   - [Fetcher] turns search results into local working copies via shallow
//     git clones, the way a dataset build wants them.
//
// # Usage
//
//	client, err := github.NewClient(token, 24*time.Hour)
//	fetcher := github.NewFetcher(client, logger)
//
//	repos, err := fetcher.Fetch(ctx, github.FetchOptions{
//	    Query: "topic:terraform language:HCL",
//	    Limit: 50,
//	    Dir:   "/tmp/archmap-repos",
//	})
//	for _, r := range repos {
//	    // r.FullName is "owner/repo", r.Path is the local clone
//	}
//
// Authentication is optional. Unauthenticated requests hit much lower rate
// limits, so a token is strongly recommended for dataset builds.
package github
