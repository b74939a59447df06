package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Collection is a minimal collection projection used by lookup and export
type Collection struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Handle    string `json:"handle,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// normalizeTitle lowercases and collapses whitespace for exact-match checks
func normalizeTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// FindCollectionByTitleExact looks up a collection whose title equals the
// given one after normalization. The Admin search endpoint has substring
// semantics, so results are re-validated; when the quoted query yields no
// exact match an unquoted variant is attempted before giving up. Returns nil
// when no collection matches exactly.
func (c *Client) FindCollectionByTitleExact(ctx context.Context, title string) (*Collection, error) {
	target := normalizeTitle(title)

	for _, q := range []string{
		fmt.Sprintf("title:%q", title),
		"title:" + title,
	} {
		resp, err := c.Execute(ctx, CollectionsByQueryQuery, map[string]interface{}{"q": q})
		if err != nil {
			return nil, fmt.Errorf("collection search: %w", err)
		}

		var result struct {
			Collections struct {
				Nodes []Collection `json:"nodes"`
			} `json:"collections"`
		}
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return nil, fmt.Errorf("parse collection search response: %w", err)
		}

		for _, n := range result.Collections.Nodes {
			if normalizeTitle(n.Title) == target {
				found := n
				return &found, nil
			}
		}
	}

	return nil, nil
}

// ListCollections walks every collection via cursor pagination
func (c *Client) ListCollections(ctx context.Context) ([]Collection, error) {
	var all []Collection
	cursor := ""
	for {
		variables := map[string]interface{}{"first": PageSize}
		if cursor != "" {
			variables["cursor"] = cursor
		}
		resp, err := c.Execute(ctx, CollectionsExportQuery, variables)
		if err != nil {
			return all, fmt.Errorf("list collections: %w", err)
		}

		var result struct {
			Collections struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Nodes []Collection `json:"nodes"`
			} `json:"collections"`
		}
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return all, fmt.Errorf("parse collections response: %w", err)
		}

		all = append(all, result.Collections.Nodes...)
		if !result.Collections.PageInfo.HasNextPage {
			return all, nil
		}
		cursor = result.Collections.PageInfo.EndCursor
	}
}

// ListVendorsInCollection returns the distinct vendors of a collection's
// products, in first-seen order
func (c *Client) ListVendorsInCollection(ctx context.Context, collectionID string) ([]string, error) {
	seen := make(map[string]bool)
	var vendors []string

	cursor := ""
	gid := ToCollectionGID(collectionID)
	for {
		variables := map[string]interface{}{"id": gid, "first": PageSize}
		if cursor != "" {
			variables["cursor"] = cursor
		}
		resp, err := c.Execute(ctx, VendorsInCollectionQuery, variables)
		if err != nil {
			return vendors, fmt.Errorf("list vendors in collection: %w", err)
		}

		var result struct {
			Collection *struct {
				Products struct {
					PageInfo struct {
						HasNextPage bool   `json:"hasNextPage"`
						EndCursor   string `json:"endCursor"`
					} `json:"pageInfo"`
					Nodes []struct {
						Vendor string `json:"vendor"`
					} `json:"nodes"`
				} `json:"products"`
			} `json:"collection"`
		}
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return vendors, fmt.Errorf("parse vendors response: %w", err)
		}
		if result.Collection == nil {
			c.logger.Warn("Collection not found while listing vendors", zap.String("collection_id", collectionID))
			return vendors, nil
		}

		for _, n := range result.Collection.Products.Nodes {
			v := strings.TrimSpace(n.Vendor)
			if v != "" && !seen[v] {
				seen[v] = true
				vendors = append(vendors, v)
			}
		}
		if !result.Collection.Products.PageInfo.HasNextPage {
			return vendors, nil
		}
		cursor = result.Collection.Products.PageInfo.EndCursor
	}
}
