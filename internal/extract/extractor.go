package extract

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/FreeMarketamilitia/classroom-grader/internal/classroom"
	"github.com/FreeMarketamilitia/classroom-grader/internal/instrumentation"
	"github.com/FreeMarketamilitia/classroom-grader/internal/logging"
)

// FragmentSeparator joins the text of several attachments of one submission.
const FragmentSeparator = "\n\n==========\n\n"

// Options configures an Extractor.
type Options struct {
	// ConvertDocuments enables PDF, XLSX and DOCX conversion for Drive files.
	ConvertDocuments bool
	Metrics          *instrumentation.Metrics
	Logger           *slog.Logger
}

// Extractor produces the text content of a submission from its attachments.
// It only reads; the submission passed in is never modified.
type Extractor struct {
	drive   *DriveExtractor
	forms   *FormExtractor
	links   *LinkExtractor
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// New creates an Extractor. documents may be nil, in which case every link
// attachment is unsupported.
func New(files FileContentProvider, formProvider FormProvider, documents DocumentTextProvider, opts Options) *Extractor {
	logger := logging.OrDefault(opts.Logger)
	return &Extractor{
		drive:   NewDriveExtractor(files, opts.ConvertDocuments, logger),
		forms:   NewFormExtractor(formProvider, opts.Metrics, logger),
		links:   NewLinkExtractor(documents),
		metrics: opts.Metrics,
		logger:  logger,
	}
}

// ExtractContent extracts every attachment of sub in order and joins the
// text of those that succeeded with FragmentSeparator. Failures of
// individual attachments are dropped as long as one attachment succeeded;
// otherwise an *AggregateError lists every failure in attachment order.
// studentEmail selects the student's form responses and may be empty.
func (e *Extractor) ExtractContent(ctx context.Context, sub *classroom.Submission, studentEmail string) (string, error) {
	if sub == nil {
		return "", &Error{Kind: KindUnexpected, Message: "submission is required"}
	}

	logger := logging.WithSubmission(e.logger, sub.CourseID, sub.CourseWorkID, sub.ID)
	if studentEmail != "" {
		logger = logger.With(slog.String(logging.KeyUserHash, logging.AnonymizeEmail(studentEmail)))
	}

	attachments := sub.AllAttachments()

	ctx, span := instrumentation.StartSpan(ctx, "extract.submission",
		append(instrumentation.NewSpanAttributeBuilder().
			WithSubmission(sub.CourseID, sub.CourseWorkID, sub.ID).
			Build(), attribute.Int(instrumentation.SpanAttrAttachments, len(attachments)))...)
	defer span.End()

	if len(attachments) == 0 {
		logger.Warn("Submission has no attachments")
		err := &Error{Kind: KindNotFoundLocally, Message: "No attachments found"}
		instrumentation.SetSpanError(span, err)
		return "", err
	}

	var (
		fragments []string
		failures  []*Error
	)
	for i, a := range attachments {
		text, err := e.extractOne(ctx, logger, i, a, studentEmail)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		fragments = append(fragments, text)
	}

	if len(fragments) > 0 {
		if len(failures) > 0 {
			logger.Info("Extracted content with some attachments failing",
				slog.Int("succeeded", len(fragments)),
				slog.Int("failed", len(failures)))
		}
		instrumentation.SetSpanSuccess(span)
		return strings.Join(fragments, FragmentSeparator), nil
	}

	agg := &AggregateError{Errors: failures}
	logger.Warn("Could not extract content from any attachment", logging.Err(agg))
	instrumentation.SetSpanError(span, agg)
	return "", agg
}

// ExtractAttachment extracts a single attachment outside of a submission.
func (e *Extractor) ExtractAttachment(ctx context.Context, a classroom.Attachment, studentEmail string) (string, error) {
	text, err := e.extractOne(ctx, e.logger, 0, a, studentEmail)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (e *Extractor) extractOne(ctx context.Context, logger *slog.Logger, index int, a classroom.Attachment, studentEmail string) (string, *Error) {
	kind := Classify(a)
	desc := Describe(a)

	ctx, span := instrumentation.StartSpan(ctx, "extract.attachment",
		append(instrumentation.NewSpanAttributeBuilder().
			WithAttachmentKind(kind.String()).
			WithResourceID(a.Identifier()).
			Build(), attribute.Int("extract.attachment_index", index))...)
	defer span.End()

	start := time.Now()
	var (
		text string
		err  error
	)
	switch kind {
	case classroom.KindDriveFile:
		text, err = e.drive.Extract(ctx, *a.DriveFile)
	case classroom.KindForm:
		text, err = e.forms.Extract(ctx, *a.Form, studentEmail)
	case classroom.KindLink:
		text, err = e.links.Extract(ctx, *a.Link)
	default:
		err = &Error{Kind: KindUnsupportedType, Message: "Attachment type not supported."}
	}

	if err == nil {
		e.metrics.RecordExtraction(ctx, kind.String(), "", time.Since(start))
		instrumentation.SetSpanSuccess(span)
		logger.Debug("Extracted attachment", logging.AttachmentKind(kind.String()), slog.Int("chars", len(text)))
		return text, nil
	}

	failure := attachmentError(desc, err)
	e.metrics.RecordExtraction(ctx, kind.String(), failure.Kind.String(), time.Since(start))
	span.SetAttributes(attribute.String(instrumentation.SpanAttrErrorKind, failure.Kind.String()))
	instrumentation.SetSpanError(span, failure)
	logger.Warn("Attachment extraction failed",
		logging.AttachmentKind(kind.String()),
		logging.ErrorKind(failure.Kind.String()),
		slog.String("attachment", desc),
		slog.String("reason", failure.Message))
	return "", failure
}

// attachmentError returns a copy of err scoped to the attachment desc.
func attachmentError(desc string, err error) *Error {
	if e, ok := err.(*Error); ok {
		scoped := *e
		scoped.Attachment = desc
		return &scoped
	}
	return &Error{Kind: KindUnexpected, Attachment: desc, Message: err.Error(), Err: err}
}
