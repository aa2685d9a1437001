package curseforge

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/mcbuilder/pkg/cache"
	"github.com/matzehuels/mcbuilder/pkg/catalog"
	mcerrors "github.com/matzehuels/mcbuilder/pkg/errors"
	"github.com/matzehuels/mcbuilder/pkg/integrations"
)

// DefaultBaseURL is the public addon API endpoint.
const DefaultBaseURL = "https://addons-ecs.forgesvc.net/api/v2"

// Options configures a [Client].
type Options struct {
	// BaseURL overrides [DefaultBaseURL].
	BaseURL string

	// APIKey is sent as the x-api-key header when set.
	APIKey string
}

// Client provides access to the CurseForge addon API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

var _ catalog.Catalog = (*Client)(nil)

// NewClient creates a CurseForge client with the given cache backend.
//
// Parameters:
//   - backend: Cache backend for response caching (use cache.NewNullCache() for no caching)
//   - cacheTTL: How long responses are cached
//   - opts: Endpoint and credentials
func NewClient(backend cache.Cache, cacheTTL time.Duration, opts Options) *Client {
	headers := map[string]string{
		"User-Agent": integrations.UserAgent,
		"Accept":     "application/json",
	}
	if opts.APIKey != "" {
		headers["x-api-key"] = opts.APIKey
	}
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		Client:  integrations.NewClient(backend, "curseforge", cacheTTL, headers),
		baseURL: baseURL,
	}
}

// GetProject retrieves the project record for id.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
//
// Returns:
//   - the project on success
//   - a NOT_FOUND error wrapping [integrations.ErrNotFound] if the project doesn't exist
//   - a CATALOG_UNAVAILABLE error for HTTP and decoding failures
func (c *Client) GetProject(ctx context.Context, id int, refresh bool) (*catalog.Project, error) {
	var p catalog.Project
	err := c.Cached(ctx, "project:"+strconv.Itoa(id), refresh, &p, func() error {
		var data addonResponse
		if err := c.Get(ctx, fmt.Sprintf("%s/addon/%d", c.baseURL, id), &data); err != nil {
			return err
		}
		p = data.toProject()
		return nil
	})
	if err != nil {
		return nil, wrapErr(err, "project %d", id)
	}
	return &p, nil
}

// GetFiles retrieves every file of project id, most recently published first.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
func (c *Client) GetFiles(ctx context.Context, id int, refresh bool) ([]catalog.File, error) {
	var files []catalog.File
	err := c.Cached(ctx, "files:"+strconv.Itoa(id), refresh, &files, func() error {
		var data []fileResponse
		if err := c.Get(ctx, fmt.Sprintf("%s/addon/%d/files", c.baseURL, id), &data); err != nil {
			return err
		}
		files = make([]catalog.File, 0, len(data))
		for _, f := range data {
			files = append(files, f.toFile())
		}
		return nil
	})
	if err != nil {
		return nil, wrapErr(err, "files of project %d", id)
	}
	catalog.SortByRecency(files)
	return files, nil
}

func wrapErr(err error, format string, args ...any) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, integrations.ErrNotFound) {
		return mcerrors.Wrap(mcerrors.ErrCodeNotFound, err, format, args...)
	}
	return mcerrors.Wrap(mcerrors.ErrCodeCatalogUnavailable, err, format, args...)
}

type addonResponse struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	Summary    string `json:"summary"`
	WebsiteURL string `json:"websiteUrl"`
	Authors    []struct {
		Name string `json:"name"`
	} `json:"authors"`
	GameVersionLatestFiles []struct {
		GameVersion   string `json:"gameVersion"`
		ProjectFileID int    `json:"projectFileId"`
	} `json:"gameVersionLatestFiles"`
}

func (a addonResponse) toProject() catalog.Project {
	p := catalog.Project{
		ID:         a.ID,
		Name:       a.Name,
		Slug:       a.Slug,
		Summary:    a.Summary,
		WebsiteURL: a.WebsiteURL,
	}
	for _, au := range a.Authors {
		p.Authors = append(p.Authors, au.Name)
	}
	for _, lf := range a.GameVersionLatestFiles {
		p.LatestFiles = append(p.LatestFiles, catalog.VersionFile{
			GameVersion: lf.GameVersion,
			FileID:      lf.ProjectFileID,
		})
	}
	return p
}

type fileResponse struct {
	ID           int       `json:"id"`
	DisplayName  string    `json:"displayName"`
	FileName     string    `json:"fileName"`
	FileDate     time.Time `json:"fileDate"`
	FileLength   int64     `json:"fileLength"`
	DownloadURL  string    `json:"downloadUrl"`
	GameVersion  []string  `json:"gameVersion"`
	Dependencies []struct {
		AddonID int `json:"addonId"`
		Type    int `json:"type"`
	} `json:"dependencies"`
}

func (f fileResponse) toFile() catalog.File {
	out := catalog.File{
		ID:           f.ID,
		DisplayName:  f.DisplayName,
		FileName:     f.FileName,
		DownloadURL:  f.DownloadURL,
		PublishedAt:  f.FileDate,
		Length:       f.FileLength,
		GameVersions: f.GameVersion,
	}
	for _, d := range f.Dependencies {
		out.Dependencies = append(out.Dependencies, catalog.Dependency{
			ProjectID: d.AddonID,
			Kind:      catalog.DependencyKind(d.Type),
		})
	}
	return out
}
