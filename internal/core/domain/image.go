package domain

// ImageRecord is a single catalog hit. It is immutable once received.
type ImageRecord struct {
	// ID is unique within a result set.
	ID string `json:"id"`

	// CoverPath identifies the image file to display. For albums it is
	// the cover image id, otherwise the image id itself.
	CoverPath string `json:"cover"`

	// Title is the user-supplied title, possibly empty.
	Title string `json:"title"`

	// IsAlbum reports whether the hit is an album rather than a single image.
	IsAlbum bool `json:"is_album"`

	// Link is the catalog page for the hit.
	Link string `json:"link,omitempty"`
}

// CoverURL builds the direct image URL under the given image host.
func (r ImageRecord) CoverURL(base string) string {
	if r.CoverPath == "" {
		return ""
	}
	return base + r.CoverPath + ".jpg"
}

// ResultPage is the ordered set of records for one (query, page) pair.
// An empty page is valid and means there are no more results.
type ResultPage []ImageRecord

// AppendPage returns a new list holding current followed by page.
// Neither argument is modified.
func AppendPage(current []ImageRecord, page ResultPage) []ImageRecord {
	next := make([]ImageRecord, 0, len(current)+len(page))
	next = append(next, current...)
	return append(next, page...)
}
