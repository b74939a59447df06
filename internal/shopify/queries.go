package shopify

// CollectionsByQueryQuery searches collections by a query string
// (e.g. `title:"Acme"`). The search is substring-ish, so callers must
// re-validate titles for exact matching.
const CollectionsByQueryQuery = `
query collectionsByQuery($q: String!) {
  collections(first: 20, query: $q) {
    nodes {
      id
      title
    }
  }
}
`

// ProductIDsInCollectionQuery pages through the product ids of a collection
const ProductIDsInCollectionQuery = `
query productIDsInCollection($id: ID!, $first: Int!, $cursor: String) {
  collection(id: $id) {
    products(first: $first, after: $cursor) {
      pageInfo {
        hasNextPage
        endCursor
      }
      nodes {
        id
      }
    }
  }
}
`

// ProductIDsByVendorQuery pages through products matching a vendor query.
// Vendor search is not exact either, nodes carry the vendor for re-filtering.
const ProductIDsByVendorQuery = `
query productIDsByVendor($q: String!, $first: Int!, $cursor: String) {
  products(first: $first, after: $cursor, query: $q) {
    pageInfo {
      hasNextPage
      endCursor
    }
    nodes {
      id
      vendor
    }
  }
}
`

// ProductMetafieldsQuery fetches the metafields of a product in one namespace
const ProductMetafieldsQuery = `
query productMetafields($id: ID!, $namespace: String!) {
  product(id: $id) {
    metafields(first: 100, namespace: $namespace) {
      edges {
        node {
          id
          key
          namespace
        }
      }
    }
  }
}
`

// CollectionsExportQuery pages through all collections for the exporter
const CollectionsExportQuery = `
query collectionsExport($first: Int!, $cursor: String) {
  collections(first: $first, after: $cursor) {
    pageInfo {
      hasNextPage
      endCursor
    }
    nodes {
      id
      title
      handle
      updatedAt
    }
  }
}
`

// VendorsInCollectionQuery pages through the vendors of a collection's products
const VendorsInCollectionQuery = `
query vendorsInCollection($id: ID!, $first: Int!, $cursor: String) {
  collection(id: $id) {
    products(first: $first, after: $cursor) {
      pageInfo {
        hasNextPage
        endCursor
      }
      nodes {
        vendor
      }
    }
  }
}
`
