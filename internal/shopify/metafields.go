package shopify

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/unionretail/promosync/pkg/errors"
)

// MetafieldsSet writes a batch of metafields in one call. The set is an
// upsert, re-setting an existing key just replaces its value. Any userErrors
// fail the whole call.
func (c *Client) MetafieldsSet(ctx context.Context, metafields []MetafieldsSetInput) error {
	resp, err := c.Execute(ctx, MetafieldsSetMutation, map[string]interface{}{"metafields": metafields})
	if err != nil {
		return fmt.Errorf("metafieldsSet: %w", err)
	}

	var result struct {
		MetafieldsSet struct {
			UserErrors []apperrors.UserError `json:"userErrors"`
		} `json:"metafieldsSet"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("parse metafieldsSet response: %w", err)
	}
	if len(result.MetafieldsSet.UserErrors) > 0 {
		return &apperrors.ErrUserErrors{Operation: "metafieldsSet", Errors: result.MetafieldsSet.UserErrors}
	}
	return nil
}

// GetMetafieldIDs looks up the metafield ids of a product for the given keys
// in one namespace. Keys with no metafield map to the empty string.
func (c *Client) GetMetafieldIDs(ctx context.Context, productID, namespace string, keys []string) (map[string]string, error) {
	resp, err := c.Execute(ctx, ProductMetafieldsQuery, map[string]interface{}{
		"id":        productID,
		"namespace": namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("product metafields: %w", err)
	}

	var result struct {
		Product *struct {
			Metafields struct {
				Edges []struct {
					Node struct {
						ID  string `json:"id"`
						Key string `json:"key"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"metafields"`
		} `json:"product"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("parse product metafields response: %w", err)
	}

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = ""
	}
	if result.Product == nil {
		return out, nil
	}
	for _, edge := range result.Product.Metafields.Edges {
		if _, wanted := out[edge.Node.Key]; wanted {
			out[edge.Node.Key] = edge.Node.ID
		}
	}
	return out, nil
}

// MetafieldDelete removes one metafield by id
func (c *Client) MetafieldDelete(ctx context.Context, metafieldID string) error {
	resp, err := c.Execute(ctx, MetafieldDeleteMutation, map[string]interface{}{"id": metafieldID})
	if err != nil {
		return fmt.Errorf("metafieldDelete: %w", err)
	}

	var result struct {
		MetafieldDelete struct {
			DeletedID  string                `json:"deletedId"`
			UserErrors []apperrors.UserError `json:"userErrors"`
		} `json:"metafieldDelete"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("parse metafieldDelete response: %w", err)
	}
	if len(result.MetafieldDelete.UserErrors) > 0 {
		return &apperrors.ErrUserErrors{Operation: "metafieldDelete", Errors: result.MetafieldDelete.UserErrors}
	}
	return nil
}
