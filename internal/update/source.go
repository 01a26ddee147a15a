package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/creativeprojects/go-selfupdate"
)

type Asset struct {
	Name string
	URL  string
	Size int
}

type Release struct {
	Tag         string
	Name        string
	Notes       string
	URL         string
	Draft       bool
	Prerelease  bool
	PublishedAt time.Time
	Assets      []Asset
}

// Asset returns the first asset whose name ends in suffix.
func (r *Release) Asset(suffix string) (Asset, bool) {
	for _, a := range r.Assets {
		if strings.HasSuffix(a.Name, suffix) {
			return a, true
		}
	}
	return Asset{}, false
}

// ReleaseSource lists the published releases of the application.
type ReleaseSource interface {
	ListReleases(ctx context.Context) ([]Release, error)
}

// GitHubSource reads releases through go-selfupdate's GitHub client.
type GitHubSource struct {
	source *selfupdate.GitHubSource
	repo   selfupdate.RepositorySlug
}

// NewGitHubSource takes a repository as "owner/name". GITHUB_TOKEN is
// honoured by go-selfupdate when set.
func NewGitHubSource(repository string) (*GitHubSource, error) {
	owner, name, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid repository %q, expected owner/name", repository)
	}
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create update source: %w", err)
	}
	return &GitHubSource{
		source: source,
		repo:   selfupdate.NewRepositorySlug(owner, name),
	}, nil
}

func (s *GitHubSource) ListReleases(ctx context.Context) ([]Release, error) {
	rels, err := s.source.ListReleases(ctx, s.repo)
	if err != nil {
		return nil, err
	}

	releases := make([]Release, 0, len(rels))
	for _, rel := range rels {
		r := Release{
			Tag:         rel.GetTagName(),
			Name:        rel.GetName(),
			Notes:       rel.GetReleaseNotes(),
			URL:         rel.GetURL(),
			Draft:       rel.GetDraft(),
			Prerelease:  rel.GetPrerelease(),
			PublishedAt: rel.GetPublishedAt(),
		}
		for _, a := range rel.GetAssets() {
			r.Assets = append(r.Assets, Asset{
				Name: a.GetName(),
				URL:  a.GetBrowserDownloadURL(),
				Size: a.GetSize(),
			})
		}
		releases = append(releases, r)
	}
	return releases, nil
}

// latestStable picks the newest non-draft, non-prerelease release by version.
func latestStable(releases []Release) *Release {
	var best *Release
	for i := range releases {
		r := &releases[i]
		if r.Draft || r.Prerelease {
			continue
		}
		if best == nil || CompareVersions(r.Tag, best.Tag) > 0 {
			best = r
		}
	}
	return best
}
