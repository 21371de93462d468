package publish_test

import (
	"context"
	"fmt"
	"strings"

	"lingq_upload/internal/lingq"
)

// fakeClient records every LingQ call in order and can fail a named call.
type fakeClient struct {
	calls     []string
	nextID    int
	failOn    string
	failAfter int
	seen      map[string]int

	collections []lingq.CollectionRequest
	lessons     []lingq.LessonRequest
	attached    map[int][2]string
	updates     []lingq.BulkLessonUpdate
	imports     []lingq.ImportRequest
	listing     []lingq.LessonSummary
	timestamps  []int
	coverPath   string
}

func newFakeClient() *fakeClient {
	return &fakeClient{nextID: 100, seen: map[string]int{}, attached: map[int][2]string{}}
}

func (f *fakeClient) record(call string) error {
	f.calls = append(f.calls, call)
	name := strings.Fields(call)[0]
	f.seen[name]++
	if f.failOn == name && f.seen[name] > f.failAfter {
		return &lingq.Failed{Operation: name, StatusCode: 500, Diagnostic: "boom"}
	}
	return nil
}

func (f *fakeClient) id() int {
	f.nextID++
	return f.nextID
}

func (f *fakeClient) CreateCollection(_ context.Context, req lingq.CollectionRequest) (lingq.Created, error) {
	if err := f.record("collection " + req.Title); err != nil {
		return lingq.Created{}, err
	}
	f.collections = append(f.collections, req)
	return lingq.Created{ID: f.id()}, nil
}

func (f *fakeClient) UploadCover(_ context.Context, collectionID int, imagePath string) error {
	if err := f.record(fmt.Sprintf("cover %d", collectionID)); err != nil {
		return err
	}
	f.coverPath = imagePath
	return nil
}

func (f *fakeClient) CreateLesson(_ context.Context, req lingq.LessonRequest) (lingq.Created, error) {
	if err := f.record("lesson " + req.Title); err != nil {
		return lingq.Created{}, err
	}
	f.lessons = append(f.lessons, req)
	return lingq.Created{ID: f.id()}, nil
}

func (f *fakeClient) AttachAudio(_ context.Context, lessonID int, audioPath, coverPath string) error {
	if err := f.record(fmt.Sprintf("audio %d", lessonID)); err != nil {
		return err
	}
	f.attached[lessonID] = [2]string{audioPath, coverPath}
	return nil
}

func (f *fakeClient) ListLessons(_ context.Context, collectionID int) ([]lingq.LessonSummary, error) {
	if err := f.record(fmt.Sprintf("list %d", collectionID)); err != nil {
		return nil, err
	}
	return f.listing, nil
}

func (f *fakeClient) UpdateLessons(_ context.Context, collectionID int, update lingq.BulkLessonUpdate) error {
	if err := f.record(fmt.Sprintf("update %d", collectionID)); err != nil {
		return err
	}
	f.updates = append(f.updates, update)
	return nil
}

func (f *fakeClient) GenerateTimestamps(_ context.Context, lessonID int) error {
	if err := f.record(fmt.Sprintf("timestamps %d", lessonID)); err != nil {
		return err
	}
	f.timestamps = append(f.timestamps, lessonID)
	return nil
}

func (f *fakeClient) ImportLesson(_ context.Context, req lingq.ImportRequest) (lingq.Created, error) {
	if err := f.record("import " + req.Title); err != nil {
		return lingq.Created{}, err
	}
	f.imports = append(f.imports, req)
	return lingq.Created{ID: f.id()}, nil
}

type recordingNotifier struct {
	events []string
}
