package shopify

import "time"

// MetafieldsSetMutation sets a batch of metafields in one call. The call is
// treated as failed when any entry is rejected (userErrors non-empty).
const MetafieldsSetMutation = `
mutation metafieldsSet($metafields: [MetafieldsSetInput!]!) {
  metafieldsSet(metafields: $metafields) {
    metafields {
      id
      namespace
      key
    }
    userErrors {
      field
      message
    }
  }
}
`

// MetafieldDeleteMutation deletes one metafield by id. The Admin API has no
// batch delete, so callers issue one call per id.
const MetafieldDeleteMutation = `
mutation metafieldDelete($id: ID!) {
  metafieldDelete(input: {id: $id}) {
    deletedId
    userErrors {
      field
      message
    }
  }
}
`

// MetafieldsSetInput is one entry of the metafieldsSet mutation
type MetafieldsSetInput struct {
	OwnerID   string `json:"ownerId"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

// NewDateMetafield builds a date-typed metafield set input with an ISO value
func NewDateMetafield(ownerID, namespace, key string, d time.Time) MetafieldsSetInput {
	return MetafieldsSetInput{
		OwnerID:   ownerID,
		Namespace: namespace,
		Key:       key,
		Type:      "date",
		Value:     d.Format("2006-01-02"),
	}
}
