package lingq

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// CreateLesson creates a text lesson in a collection and returns its ID.
func (c *Client) CreateLesson(ctx context.Context, req LessonRequest) (Created, error) {
	payload := lessonPayload{
		Title:      req.Title,
		Status:     req.Status,
		Collection: req.CollectionID,
		Text:       req.Text,
	}
	var resp idResponse
	if err := c.doJSON(ctx, "create lesson", http.MethodPost, "lessons/", payload, &resp); err != nil {
		return Created{}, err
	}
	if resp.ID == 0 {
		return Created{}, &Failed{Operation: "create lesson", Diagnostic: "response carries no lesson id"}
	}
	return Created{ID: resp.ID}, nil
}

// AttachAudio uploads the audio file of a lesson and, when coverPath is set,
// its image.
func (c *Client) AttachAudio(ctx context.Context, lessonID int, audioPath, coverPath string) error {
	const op = "attach audio"
	files := []formFile{audioFile("audio", audioPath)}
	if coverPath != "" {
		files = append(files, imageFile("image", coverPath))
	}
	body, contentType, err := buildMultipart([]formField{{name: "language", value: c.language}}, files)
	if err != nil {
		return &Failed{Operation: op, Diagnostic: "build body", Err: err}
	}
	req, err := c.newRequest(ctx, http.MethodPatch, fmt.Sprintf("lessons/%d/", lessonID), body, contentType)
	if err != nil {
		return &Failed{Operation: op, Diagnostic: "build request", Err: err}
	}
	return c.do(op, req, nil)
}

// GenerateTimestamps asks LingQ to align a lesson's audio with its text. The
// work happens asynchronously on the server.
func (c *Client) GenerateTimestamps(ctx context.Context, lessonID int) error {
	return c.doJSON(ctx, "generate timestamps", http.MethodPost, fmt.Sprintf("lessons/%d/genaudio/", lessonID), struct{}{}, nil)
}

// ImportLesson creates an audio-only lesson; LingQ transcribes the audio.
func (c *Client) ImportLesson(ctx context.Context, req ImportRequest) (Created, error) {
	const op = "import lesson"
	fields := []formField{
		{name: "language", value: c.language},
		{name: "collection", value: strconv.Itoa(req.CollectionID)},
		{name: "isHidden", value: strconv.FormatBool(req.Hidden)},
		{name: "title", value: req.Title},
		{name: "save", value: "true"},
	}
	body, contentType, err := buildMultipart(fields, []formFile{audioFile("audio", req.AudioPath)})
	if err != nil {
		return Created{}, &Failed{Operation: op, Diagnostic: "build body", Err: err}
	}
	httpReq, err := c.newRequest(ctx, http.MethodPost, "lessons/import/", body, contentType)
	if err != nil {
		return Created{}, &Failed{Operation: op, Diagnostic: "build request", Err: err}
	}
	var resp idResponse
	if err := c.do(op, httpReq, &resp); err != nil {
		return Created{}, err
	}
	if resp.ID == 0 {
		return Created{}, &Failed{Operation: op, Diagnostic: "response carries no lesson id"}
	}
	return Created{ID: resp.ID}, nil
}
