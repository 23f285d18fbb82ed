package domain

// CollectionKind names a moderated collection.
type CollectionKind string

const (
	CollectionGuestbook CollectionKind = "guestbook"
	CollectionSongs     CollectionKind = "songs"
)

func ParseCollectionKind(s string) (CollectionKind, bool) {
	switch CollectionKind(s) {
	case CollectionGuestbook, CollectionSongs:
		return CollectionKind(s), true
	default:
		return "", false
	}
}
