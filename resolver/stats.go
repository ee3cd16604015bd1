package resolver

// Stats reports cache activity of a Resolver since it was created.
type Stats struct {
	// DocumentsLoaded counts documents read from disk or fetched over the network.
	DocumentsLoaded int
	// DocumentCacheHits counts lookups answered from the document cache.
	DocumentCacheHits int
	// SubtreeCacheHits counts Resolve calls answered from the subtree cache.
	SubtreeCacheHits int
	// SubtreeCacheMisses counts Resolve calls that had to traverse a document.
	SubtreeCacheMisses int
	// CachedDocuments is the number of entries in the document cache.
	CachedDocuments int
	// CachedSubtrees is the number of entries in the subtree cache.
	CachedSubtrees int
	// RefsExpanded counts $ref nodes replaced during expansion.
	RefsExpanded int
}
