// Package release uploads published artifacts to GitHub release assets.
package release

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/google/go-github/v45/github"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
)

// ErrUploadRejected means the release destination is invalid or the token
// is not authorized for it.
var ErrUploadRejected = errors.New("upload rejected")

// Client uploads assets to releases of one repository.
type Client struct {
	gh    *github.Client
	owner string
	repo  string
}

// NewClient builds an authenticated client for owner/repo. Transient HTTP
// failures retry inside the transport; API-level rejections do not.
func NewClient(ctx context.Context, token, owner, repo string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: no token provided", ErrUploadRejected)
	}

	rc := retryablehttp.NewClient()
	rc.Logger = nil

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	ctx = context.WithValue(ctx, oauth2.HTTPClient, rc.StandardClient())
	tc := oauth2.NewClient(ctx, ts)

	return &Client{gh: github.NewClient(tc), owner: owner, repo: repo}, nil
}

// Upload stores the file at path as assetName on the release tagged tag.
// An existing asset with the same name is replaced.
func (c *Client) Upload(ctx context.Context, tag, assetName, path string) error {
	rel, resp, err := c.gh.Repositories.GetReleaseByTag(ctx, c.owner, c.repo, tag)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return fmt.Errorf("%w: release %s on %s/%s: %v", ErrUploadRejected, tag, c.owner, c.repo, err)
		}
		return fmt.Errorf("failed to look up release %s: %w", tag, err)
	}

	if err := c.deleteExistingAsset(ctx, rel.GetID(), assetName); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open artifact %s: %w", path, err)
	}
	defer f.Close()

	opts := &github.UploadOptions{Name: assetName}
	if _, resp, err := c.gh.Repositories.UploadReleaseAsset(ctx, c.owner, c.repo, rel.GetID(), opts, f); err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnprocessableEntity) {
			return fmt.Errorf("%w: asset %s: %v", ErrUploadRejected, assetName, err)
		}
		return fmt.Errorf("failed to upload %s: %w", assetName, err)
	}
	return nil
}

// deleteExistingAsset removes a previously uploaded asset of the same name,
// so re-running a release replaces artifacts instead of failing on them.
func (c *Client) deleteExistingAsset(ctx context.Context, releaseID int64, assetName string) error {
	opts := &github.ListOptions{PerPage: 100}
	for {
		assets, resp, err := c.gh.Repositories.ListReleaseAssets(ctx, c.owner, c.repo, releaseID, opts)
		if err != nil {
			return fmt.Errorf("failed to list release assets: %w", err)
		}
		for _, a := range assets {
			if a.GetName() == assetName {
				if _, err := c.gh.Repositories.DeleteReleaseAsset(ctx, c.owner, c.repo, a.GetID()); err != nil {
					return fmt.Errorf("failed to replace asset %s: %w", assetName, err)
				}
				return nil
			}
		}
		if resp.NextPage == 0 {
			return nil
		}
		opts.Page = resp.NextPage
	}
}
