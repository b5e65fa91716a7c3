package extract

import (
	"context"
	"fmt"
	"sync"

	"github.com/FreeMarketamilitia/classroom-grader/internal/drive"
	"github.com/FreeMarketamilitia/classroom-grader/internal/forms"
)

type fakeFiles struct {
	mu      sync.Mutex
	meta    map[string]*drive.FileMetadata
	content map[string][]byte
	errs    map[string]error
	calls   []string
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{
		meta:    map[string]*drive.FileMetadata{},
		content: map[string][]byte{},
		errs:    map[string]error{},
	}
}

func (f *fakeFiles) add(id, name, mimeType string, content []byte) *fakeFiles {
	f.meta[id] = &drive.FileMetadata{ID: id, Name: name, MimeType: mimeType}
	f.content[id] = content
	return f
}

func (f *fakeFiles) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeFiles) GetMetadata(_ context.Context, fileID string) (*drive.FileMetadata, error) {
	f.record("get:" + fileID)
	if err := f.errs[fileID]; err != nil {
		return nil, err
	}
	meta, ok := f.meta[fileID]
	if !ok {
		return nil, fmt.Errorf("no such file %s", fileID)
	}
	return meta, nil
}

// DownloadOrExport routes like drive.Client so call order can be asserted.
func (f *fakeFiles) DownloadOrExport(_ context.Context, meta *drive.FileMetadata) (string, []byte, error) {
	if target, ok := drive.ExportMimeType(meta.MimeType); ok {
		f.record("export:" + meta.ID + ":" + target)
		return target, f.content[meta.ID], nil
	}
	if drive.IsWorkspaceType(meta.MimeType) {
		return "", nil, fmt.Errorf("%w: %s", drive.ErrUnsupportedExport, meta.MimeType)
	}
	f.record("download:" + meta.ID)
	return meta.MimeType, f.content[meta.ID], nil
}

type fakeForms struct {
	structures map[string]*forms.Structure
	responses  map[string][]forms.Response
	err        error
}

func (f *fakeForms) GetStructure(_ context.Context, formID string) (*forms.Structure, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.structures[formID]
	if !ok {
		return nil, fmt.Errorf("no such form %s", formID)
	}
	return s, nil
}

func (f *fakeForms) ListResponses(_ context.Context, formID string) ([]forms.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.responses[formID], nil
}

type fakeDocs struct {
	texts map[string]string
	err   error
}

func (f *fakeDocs) GetPlainText(_ context.Context, documentID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.texts[documentID], nil
}
