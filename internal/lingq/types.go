package lingq

// Created is the successful result of a create call.
type Created struct {
	ID int
}

// CollectionRequest describes a new collection (course).
type CollectionRequest struct {
	Title       string
	Description string
	Tags        []string
	LevelCode   int
	SourceURL   string
}

type collectionPayload struct {
	Description      string   `json:"description"`
	HasPrice         bool     `json:"hasPrice"`
	IsFeatured       bool     `json:"isFeatured"`
	SourceURLEnabled bool     `json:"sourceURLEnabled"`
	Language         string   `json:"language"`
	Level            int      `json:"level"`
	SellAll          bool     `json:"sellAll"`
	Tags             []string `json:"tags"`
	Title            string   `json:"title"`
	SourceURL        string   `json:"sourceURL"`
}

// LessonRequest describes a new lesson inside a collection.
type LessonRequest struct {
	CollectionID int
	Title        string
	Text         string
	Status       string
}

type lessonPayload struct {
	Title      string `json:"title"`
	Status     string `json:"status"`
	Collection int    `json:"collection"`
	Text       string `json:"text"`
}

// LessonSummary is one entry of a collection's lesson listing.
type LessonSummary struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Position int    `json:"pos"`
	URL      string `json:"url"`
}

type lessonPage struct {
	Count   int             `json:"count"`
	Next    *string         `json:"next"`
	Results []LessonSummary `json:"results"`
}

// BulkLessonUpdate is applied to a set of lessons in one call. Only non-empty
// fields are sent.
type BulkLessonUpdate struct {
	IDs        []int    `json:"ids"`
	AddShelves []string `json:"add_shelves,omitempty"`
	AddTags    []string `json:"add_tags,omitempty"`
	Level      int      `json:"level,omitempty"`
	Status     string   `json:"status,omitempty"`
}

// ImportRequest describes an audio-only lesson import.
type ImportRequest struct {
	CollectionID int
	Title        string
	AudioPath    string
	Hidden       bool
}

type idResponse struct {
	ID int `json:"id"`
}
