package shared

const (
	EntityAuthor = "author"
	EntityBook   = "book"

	QueueSearch = "search"

	TypeReindexAuthor = "search:reindex_author"
	TypeReindexBook   = "search:reindex_book"
	TypeRebuildIndex  = "search:rebuild"
)

// Entities lists every indexed entity, in rebuild order.
var Entities = []string{EntityAuthor, EntityBook}

// ReindexPayload asks the worker to bring one index document back in line with the store.
type ReindexPayload struct {
	ID int64 `json:"id"`
}

// RebuildPayload asks the worker to rebuild the whole index of one entity.
type RebuildPayload struct {
	Entity string `json:"entity"`
}

// ReindexTaskType returns the reindex task type for entity, or "" if it is not indexed.
func ReindexTaskType(entity string) string {
	switch entity {
	case EntityAuthor:
		return TypeReindexAuthor
	case EntityBook:
		return TypeReindexBook
	default:
		return ""
	}
}
