package disk

// PageID identifies a page's persistent home on disk. It is opaque to
// every collaborator except the Manager that assigns it.
type PageID int64

// InvalidPageID is the reserved sentinel distinct from every legal id.
const InvalidPageID PageID = -1

// PageSize is the size, in bytes, of every page slab moved between disk
// and a frame.
const PageSize = 4096
