package lingq

import (
	"context"
	"fmt"
	"net/http"
)

// CreateCollection creates a collection and returns its ID.
func (c *Client) CreateCollection(ctx context.Context, req CollectionRequest) (Created, error) {
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	payload := collectionPayload{
		Description: req.Description,
		Language:    c.language,
		Level:       req.LevelCode,
		Tags:        tags,
		Title:       req.Title,
		SourceURL:   req.SourceURL,
	}
	var resp idResponse
	if err := c.doJSON(ctx, "create collection", http.MethodPost, "collections/", payload, &resp); err != nil {
		return Created{}, err
	}
	if resp.ID == 0 {
		return Created{}, &Failed{Operation: "create collection", Diagnostic: "response carries no collection id"}
	}
	return Created{ID: resp.ID}, nil
}

// UploadCover attaches an image to a collection.
func (c *Client) UploadCover(ctx context.Context, collectionID int, imagePath string) error {
	const op = "upload cover"
	body, contentType, err := buildMultipart(nil, []formFile{imageFile("image", imagePath)})
	if err != nil {
		return &Failed{Operation: op, Diagnostic: "build body", Err: err}
	}
	req, err := c.newRequest(ctx, http.MethodPatch, fmt.Sprintf("collections/%d/", collectionID), body, contentType)
	if err != nil {
		return &Failed{Operation: op, Diagnostic: "build request", Err: err}
	}
	return c.do(op, req, nil)
}

// ListLessons returns every lesson in the collection sorted by position.
func (c *Client) ListLessons(ctx context.Context, collectionID int) ([]LessonSummary, error) {
	var lessons []LessonSummary
	for page := 1; ; page++ {
		path := fmt.Sprintf("collections/%d/lessons/?page=%d&page_size=100&sortBy=pos", collectionID, page)
		var resp lessonPage
		if err := c.doJSON(ctx, "list lessons", http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}
		lessons = append(lessons, resp.Results...)
		if resp.Next == nil || *resp.Next == "" || len(resp.Results) == 0 {
			return lessons, nil
		}
	}
}

// UpdateLessons applies a bulk update to lessons of a collection.
func (c *Client) UpdateLessons(ctx context.Context, collectionID int, update BulkLessonUpdate) error {
	if update.IDs == nil {
		update.IDs = []int{}
	}
	return c.doJSON(ctx, "update lessons", http.MethodPost, fmt.Sprintf("collections/%d/lessons/", collectionID), update, nil)
}
