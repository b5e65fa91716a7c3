package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/FreeMarketamilitia/classroom-grader/internal/classroom"
	"github.com/FreeMarketamilitia/classroom-grader/internal/drive"
	"github.com/FreeMarketamilitia/classroom-grader/internal/forms"
	"github.com/FreeMarketamilitia/classroom-grader/internal/instrumentation"
)

func newTestExtractor(files *fakeFiles, formProvider *fakeForms, docs *fakeDocs, opts Options) *Extractor {
	if files == nil {
		files = newFakeFiles()
	}
	if formProvider == nil {
		formProvider = &fakeForms{}
	}
	var documents DocumentTextProvider
	if docs != nil {
		documents = docs
	}
	return New(files, formProvider, documents, opts)
}

func driveAttachment(id, title string) classroom.Attachment {
	return classroom.Attachment{DriveFile: &classroom.DriveFileRef{ID: id, Title: title}}
}

func linkAttachment(url, title string) classroom.Attachment {
	return classroom.Attachment{Link: &classroom.LinkRef{URL: url, Title: title}}
}

func TestExtractContent_NoAttachments(t *testing.T) {
	e := newTestExtractor(nil, nil, nil, Options{})

	text, err := e.ExtractContent(context.Background(), &classroom.Submission{ID: "s1"}, "")
	require.Error(t, err)
	assert.Empty(t, text)
	assert.Equal(t, "No attachments found", err.Error())
	assert.Equal(t, KindNotFoundLocally, KindOf(err))

	_, err = e.ExtractContent(context.Background(), nil, "")
	require.Error(t, err)
}

func TestExtractContent_SingleTextFile(t *testing.T) {
	files := newFakeFiles().add("f1", "hello.txt", "text/plain", []byte("Hello world"))
	e := newTestExtractor(files, nil, nil, Options{})

	sub := &classroom.Submission{ID: "s1", Attachments: []classroom.Attachment{driveAttachment("f1", "hello.txt")}}
	text, err := e.ExtractContent(context.Background(), sub, "")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)
}

func TestExtractContent_ImageFails(t *testing.T) {
	files := newFakeFiles().add("f1", "photo.png", "image/png", []byte{0x89, 'P', 'N', 'G'})
	e := newTestExtractor(files, nil, nil, Options{})

	sub := &classroom.Submission{ID: "s1", Attachments: []classroom.Attachment{driveAttachment("f1", "photo.png")}}
	text, err := e.ExtractContent(context.Background(), sub, "")
	require.Error(t, err)
	assert.Empty(t, text)
	assert.Contains(t, err.Error(), "not a text-based document")
	assert.Equal(t, KindUnsupportedType, KindOf(err))
}

func TestExtractContent_PartialSuccessWins(t *testing.T) {
	files := newFakeFiles().add("f1", "a.txt", "text/plain", []byte("A"))
	e := newTestExtractor(files, nil, nil, Options{})

	sub := &classroom.Submission{ID: "s1", Attachments: []classroom.Attachment{
		driveAttachment("f1", "a.txt"),
		linkAttachment("https://example.com", "Blog"),
	}}
	text, err := e.ExtractContent(context.Background(), sub, "")
	require.NoError(t, err)
	assert.Equal(t, "A", text)
}

func TestExtractContent_JoinsFragments(t *testing.T) {
	files := newFakeFiles().
		add("f1", "a.txt", "text/plain", []byte("A")).
		add("f2", "b.txt", "text/plain", []byte("B"))
	docs := &fakeDocs{texts: map[string]string{"doc1": "C"}}
	e := newTestExtractor(files, nil, docs, Options{})

	sub := &classroom.Submission{ID: "s1", Attachments: []classroom.Attachment{
		driveAttachment("f1", "a.txt"),
		linkAttachment("https://docs.google.com/document/d/doc1/edit", "Doc"),
		driveAttachment("f2", "b.txt"),
	}}
	text, err := e.ExtractContent(context.Background(), sub, "")
	require.NoError(t, err)
	assert.Equal(t, "A"+FragmentSeparator+"C"+FragmentSeparator+"B", text)
}

func TestExtractContent_AllFailInOrder(t *testing.T) {
	files := newFakeFiles().
		add("f1", "empty.txt", "text/plain", nil).
		add("f2", "photo.png", "image/png", []byte{1})
	e := newTestExtractor(files, nil, nil, Options{})

	sub := &classroom.Submission{ID: "s1", Attachments: []classroom.Attachment{
		driveAttachment("f1", "empty.txt"),
		linkAttachment("https://example.com", "Blog"),
		{},
		driveAttachment("f2", "photo.png"),
	}}
	text, err := e.ExtractContent(context.Background(), sub, "")
	require.Error(t, err)
	assert.Empty(t, text)

	var agg *AggregateError
	require.True(t, errors.As(err, &agg))
	require.Len(t, agg.Errors, 4)

	assert.Equal(t, "[drive_file 'empty.txt' (f1)] File 'empty.txt' is empty.", agg.Errors[0].Error())
	assert.Equal(t, "[link 'Blog' (https://example.com)] Link attachment 'Blog' not supported.", agg.Errors[1].Error())
	assert.Equal(t, "[unknown] Attachment type not supported.", agg.Errors[2].Error())
	assert.Equal(t, KindUnsupportedType, agg.Errors[3].Kind)

	msg := err.Error()
	first := strings.Index(msg, "empty.txt")
	second := strings.Index(msg, "Blog")
	fourth := strings.Index(msg, "photo.png")
	assert.True(t, first < second && second < fourth, "failures out of order: %s", msg)
	assert.Equal(t, KindUnexpected, KindOf(err))
}

func TestExtractContent_UsesMaterialsWhenStudentAttachedNothing(t *testing.T) {
	files := newFakeFiles().add("m1", "worksheet.txt", "text/plain", []byte("worksheet"))
	e := newTestExtractor(files, nil, nil, Options{})

	sub := &classroom.Submission{ID: "s1", Materials: []classroom.Attachment{driveAttachment("m1", "worksheet.txt")}}
	text, err := e.ExtractContent(context.Background(), sub, "")
	require.NoError(t, err)
	assert.Equal(t, "worksheet", text)
}

func TestExtractContent_FormAttachmentMatchesStudent(t *testing.T) {
	provider := &fakeForms{
		structures: map[string]*forms.Structure{"form1": quizForm()},
		responses: map[string][]forms.Response{"form1": {
			{ID: "r1", RespondentEmail: "a@x.com", Answers: map[string][]string{"q2": {"Because"}}},
			{ID: "r2", RespondentEmail: "b@x.com"},
		}},
	}
	e := newTestExtractor(nil, provider, nil, Options{})

	sub := &classroom.Submission{ID: "s1", Attachments: []classroom.Attachment{
		{Form: &classroom.FormRef{FormURL: testFormURL, Title: "Quiz"}},
	}}
	text, err := e.ExtractContent(context.Background(), sub, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, Transcript(quizForm(), provider.responses["form1"][0]), text)
}

func TestExtractContent_Idempotent(t *testing.T) {
	files := newFakeFiles().add("f1", "a.txt", "text/plain", []byte("A"))
	e := newTestExtractor(files, nil, nil, Options{})

	sub := &classroom.Submission{
		ID:          "s1",
		Attachments: []classroom.Attachment{driveAttachment("f1", "a.txt"), linkAttachment("https://x", "X")},
	}
	before := *sub
	beforeAttachments := append([]classroom.Attachment(nil), sub.Attachments...)

	text1, err1 := e.ExtractContent(context.Background(), sub, "")
	text2, err2 := e.ExtractContent(context.Background(), sub, "")

	assert.Equal(t, text1, text2)
	assert.Equal(t, err1, err2)
	assert.Equal(t, before.ID, sub.ID)
	assert.Equal(t, beforeAttachments, sub.Attachments)
	assert.Nil(t, sub.Materials)
}

func TestExtractContent_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := instrumentation.NewMetrics(mp.Meter("test"), false)
	require.NoError(t, err)

	files := newFakeFiles().add("f1", "a.txt", "text/plain", []byte("A"))
	e := newTestExtractor(files, nil, nil, Options{Metrics: metrics})

	sub := &classroom.Submission{ID: "s1", Attachments: []classroom.Attachment{
		driveAttachment("f1", "a.txt"),
		linkAttachment("https://x", "X"),
	}}
	_, err = e.ExtractContent(context.Background(), sub, "")
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byKind := map[string]string{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "grader_extractions_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				kind, _ := dp.Attributes.Value(attribute.Key("attachment_kind"))
				errKind, _ := dp.Attributes.Value(attribute.Key("error_kind"))
				byKind[kind.AsString()] = errKind.AsString()
			}
		}
	}
	assert.Equal(t, map[string]string{"drive_file": "none", "link": "unsupported_type"}, byKind)
}

func TestExtractAttachment(t *testing.T) {
	files := newFakeFiles().add("doc", "Outline", drive.MimeTypeDocument, []byte("Thesis first."))
	e := newTestExtractor(files, nil, nil, Options{})

	text, err := e.ExtractAttachment(context.Background(), driveAttachment("doc", "Outline"), "")
	require.NoError(t, err)
	assert.Equal(t, "Thesis first.", text)
	assert.Equal(t, []string{"get:doc", "export:doc:text/plain"}, files.calls)

	_, err = e.ExtractAttachment(context.Background(), linkAttachment("https://example.com/essay", "Essay"), "")
	require.Error(t, err)
	assert.Equal(t, KindUnsupportedType, KindOf(err))
}
