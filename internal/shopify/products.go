package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// ListProductIDsInCollection returns every product id of a collection via
// exact cursor pagination. Expensive on large collections, only used outside
// dry-run mode.
func (c *Client) ListProductIDsInCollection(ctx context.Context, collectionID string) ([]string, error) {
	var ids []string
	cursor := ""
	gid := ToCollectionGID(collectionID)

	for {
		variables := map[string]interface{}{"id": gid, "first": PageSize}
		if cursor != "" {
			variables["cursor"] = cursor
		}
		resp, err := c.Execute(ctx, ProductIDsInCollectionQuery, variables)
		if err != nil {
			return ids, fmt.Errorf("list products in collection: %w", err)
		}

		var result struct {
			Collection *struct {
				Products struct {
					PageInfo struct {
						HasNextPage bool   `json:"hasNextPage"`
						EndCursor   string `json:"endCursor"`
					} `json:"pageInfo"`
					Nodes []struct {
						ID string `json:"id"`
					} `json:"nodes"`
				} `json:"products"`
			} `json:"collection"`
		}
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return ids, fmt.Errorf("parse products response: %w", err)
		}
		if result.Collection == nil {
			c.logger.Warn("Collection not found", zap.String("collection_id", collectionID))
			return ids, nil
		}

		for _, n := range result.Collection.Products.Nodes {
			ids = append(ids, n.ID)
		}
		if !result.Collection.Products.PageInfo.HasNextPage {
			return ids, nil
		}
		cursor = result.Collection.Products.PageInfo.EndCursor
	}
}

// ListProductIDsByVendor returns the ids of every product whose vendor field
// matches the given vendor exactly (after normalization). The vendor search
// query is not exact, so nodes are re-filtered.
func (c *Client) ListProductIDsByVendor(ctx context.Context, vendor string) ([]string, error) {
	var ids []string
	target := normalizeTitle(vendor)
	cursor := ""

	for {
		variables := map[string]interface{}{
			"q":     fmt.Sprintf("vendor:%q", vendor),
			"first": PageSize,
		}
		if cursor != "" {
			variables["cursor"] = cursor
		}
		resp, err := c.Execute(ctx, ProductIDsByVendorQuery, variables)
		if err != nil {
			return ids, fmt.Errorf("list products by vendor: %w", err)
		}

		var result struct {
			Products struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Nodes []struct {
					ID     string `json:"id"`
					Vendor string `json:"vendor"`
				} `json:"nodes"`
			} `json:"products"`
		}
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return ids, fmt.Errorf("parse products response: %w", err)
		}

		for _, n := range result.Products.Nodes {
			if normalizeTitle(n.Vendor) == target {
				ids = append(ids, n.ID)
			}
		}
		if !result.Products.PageInfo.HasNextPage {
			return ids, nil
		}
		cursor = result.Products.PageInfo.EndCursor
	}
}

// CountProductsInCollection returns a fast approximate product count via the
// REST count endpoint. All errors are swallowed and reported as zero; callers
// must treat zero as ambiguous (truly empty or a failed call).
func (c *Client) CountProductsInCollection(ctx context.Context, collectionID string) int {
	numericID := NumericID(collectionID)
	countURL := fmt.Sprintf("%s/products/count.json?collection_id=%s", c.baseURL, url.QueryEscape(numericID))
	return c.restCount(ctx, countURL)
}

// CountProductsByVendor returns a fast approximate count of a vendor's
// products. Same best-effort contract as CountProductsInCollection.
func (c *Client) CountProductsByVendor(ctx context.Context, vendor string) int {
	countURL := fmt.Sprintf("%s/products/count.json?vendor=%s", c.baseURL, url.QueryEscape(vendor))
	return c.restCount(ctx, countURL)
}

func (c *Client) restCount(ctx context.Context, countURL string) int {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, countURL, nil)
	if err != nil {
		return 0
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("REST count failed", zap.String("url", countURL), zap.Error(err))
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("REST count non-OK status", zap.String("url", countURL), zap.Int("status", resp.StatusCode))
		return 0
	}

	var data struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0
	}
	return data.Count
}
