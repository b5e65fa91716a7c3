package classroom

import (
	"context"
	"fmt"

	classroom "google.golang.org/api/classroom/v1"
	"google.golang.org/api/option"

	"github.com/FreeMarketamilitia/classroom-grader/internal/google"
	"github.com/FreeMarketamilitia/classroom-grader/internal/instrumentation"
)

// DefaultPageSize is the page size used for list calls when none is configured.
const DefaultPageSize = 50

// Options configures a Client.
type Options struct {
	// PageSize for list calls. Zero means DefaultPageSize.
	PageSize int64
	API      google.APIOptions
}

// Client wraps the Google Classroom API service.
type Client struct {
	service  *classroom.Service
	account  string
	pageSize int64
	api      google.APIOptions
}

// NewClient creates a Classroom client from explicit client options.
func NewClient(ctx context.Context, opts Options, clientOpts ...option.ClientOption) (*Client, error) {
	svc, err := classroom.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Classroom service: %w", err)
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Client{service: svc, pageSize: pageSize, api: opts.API}, nil
}

// NewClientForAccount creates a Classroom client authenticated as account.
func NewClientForAccount(ctx context.Context, tp google.TokenProvider, account string, opts Options) (*Client, error) {
	httpClient, err := tp.HTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}
	c, err := NewClient(ctx, opts, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	c.account = account
	return c, nil
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// ListCourses returns the active courses taught by the authenticated user.
func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	pageToken := ""
	for {
		resp, err := google.Call(ctx, c.api, instrumentation.ServiceClassroom, instrumentation.OperationList, "",
			func(ctx context.Context) (*classroom.ListCoursesResponse, error) {
				return c.service.Courses.List().
					TeacherId("me").
					CourseStates("ACTIVE").
					PageSize(c.pageSize).
					PageToken(pageToken).
					Context(ctx).
					Do()
			})
		if err != nil {
			return nil, fmt.Errorf("failed to list courses: %w", err)
		}
		for _, course := range resp.Courses {
			courses = append(courses, convertCourse(course))
		}
		if resp.NextPageToken == "" {
			return courses, nil
		}
		pageToken = resp.NextPageToken
	}
}

// ListAssignments returns the coursework of a course, most recently updated first.
func (c *Client) ListAssignments(ctx context.Context, courseID string) ([]Assignment, error) {
	if courseID == "" {
		return nil, fmt.Errorf("course ID is required")
	}

	var assignments []Assignment
	pageToken := ""
	for {
		resp, err := google.Call(ctx, c.api, instrumentation.ServiceClassroom, instrumentation.OperationList, courseID,
			func(ctx context.Context) (*classroom.ListCourseWorkResponse, error) {
				return c.service.Courses.CourseWork.List(courseID).
					OrderBy("updateTime desc").
					PageSize(c.pageSize).
					PageToken(pageToken).
					Context(ctx).
					Do()
			})
		if err != nil {
			return nil, fmt.Errorf("failed to list assignments for course %s: %w", courseID, err)
		}
		for _, cw := range resp.CourseWork {
			assignments = append(assignments, convertAssignment(cw))
		}
		if resp.NextPageToken == "" {
			return assignments, nil
		}
		pageToken = resp.NextPageToken
	}
}

// GetAssignment fetches one coursework item.
func (c *Client) GetAssignment(ctx context.Context, courseID, courseWorkID string) (*Assignment, error) {
	if courseID == "" || courseWorkID == "" {
		return nil, fmt.Errorf("course ID and coursework ID are required")
	}

	cw, err := google.Call(ctx, c.api, instrumentation.ServiceClassroom, instrumentation.OperationGet, courseWorkID,
		func(ctx context.Context) (*classroom.CourseWork, error) {
			return c.service.Courses.CourseWork.Get(courseID, courseWorkID).Context(ctx).Do()
		})
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment %s: %w", courseWorkID, err)
	}
	a := convertAssignment(cw)
	return &a, nil
}

// ListSubmissions returns all student submissions for an assignment. Each
// submission carries the assignment materials so that extraction can fall
// back to them when the student attached nothing.
func (c *Client) ListSubmissions(ctx context.Context, courseID, courseWorkID string) ([]Submission, error) {
	if courseID == "" || courseWorkID == "" {
		return nil, fmt.Errorf("course ID and coursework ID are required")
	}

	// Materials are best effort: submissions are still listed without them.
	var materials []Attachment
	if a, err := c.GetAssignment(ctx, courseID, courseWorkID); err == nil {
		materials = a.Materials
	}

	var submissions []Submission
	pageToken := ""
	for {
		resp, err := google.Call(ctx, c.api, instrumentation.ServiceClassroom, instrumentation.OperationList, courseWorkID,
			func(ctx context.Context) (*classroom.ListStudentSubmissionsResponse, error) {
				return c.service.Courses.CourseWork.StudentSubmissions.List(courseID, courseWorkID).
					PageSize(c.pageSize).
					PageToken(pageToken).
					Context(ctx).
					Do()
			})
		if err != nil {
			return nil, fmt.Errorf("failed to list submissions for assignment %s: %w", courseWorkID, err)
		}
		for _, s := range resp.StudentSubmissions {
			submissions = append(submissions, convertSubmission(s, materials))
		}
		if resp.NextPageToken == "" {
			return submissions, nil
		}
		pageToken = resp.NextPageToken
	}
}

// GetSubmission fetches one submission together with the assignment materials.
func (c *Client) GetSubmission(ctx context.Context, courseID, courseWorkID, submissionID string) (*Submission, error) {
	if courseID == "" || courseWorkID == "" || submissionID == "" {
		return nil, fmt.Errorf("course ID, coursework ID and submission ID are required")
	}

	var materials []Attachment
	if a, err := c.GetAssignment(ctx, courseID, courseWorkID); err == nil {
		materials = a.Materials
	}

	s, err := google.Call(ctx, c.api, instrumentation.ServiceClassroom, instrumentation.OperationGet, submissionID,
		func(ctx context.Context) (*classroom.StudentSubmission, error) {
			return c.service.Courses.CourseWork.StudentSubmissions.Get(courseID, courseWorkID, submissionID).Context(ctx).Do()
		})
	if err != nil {
		return nil, fmt.Errorf("failed to get submission %s: %w", submissionID, err)
	}
	sub := convertSubmission(s, materials)
	return &sub, nil
}

// PatchGrade sets both the assigned and the draft grade of a submission.
func (c *Client) PatchGrade(ctx context.Context, courseID, courseWorkID, submissionID string, grade float64) error {
	if courseID == "" || courseWorkID == "" || submissionID == "" {
		return fmt.Errorf("course ID, coursework ID and submission ID are required")
	}
	if grade < 0 {
		return fmt.Errorf("grade must not be negative, got %v", grade)
	}

	body := &classroom.StudentSubmission{
		AssignedGrade: grade,
		DraftGrade:    grade,
		// A zero grade would otherwise be dropped from the request body.
		ForceSendFields: []string{"AssignedGrade", "DraftGrade"},
	}
	_, err := google.Call(ctx, c.api, instrumentation.ServiceClassroom, instrumentation.OperationPatch, submissionID,
		func(ctx context.Context) (*classroom.StudentSubmission, error) {
			return c.service.Courses.CourseWork.StudentSubmissions.Patch(courseID, courseWorkID, submissionID, body).
				UpdateMask("assignedGrade,draftGrade").
				Context(ctx).
				Do()
		})
	if err != nil {
		return fmt.Errorf("failed to patch grade for submission %s: %w", submissionID, err)
	}
	return nil
}

// ReturnSubmission returns a graded submission to the student.
func (c *Client) ReturnSubmission(ctx context.Context, courseID, courseWorkID, submissionID string) error {
	if courseID == "" || courseWorkID == "" || submissionID == "" {
		return fmt.Errorf("course ID, coursework ID and submission ID are required")
	}

	_, err := google.Call(ctx, c.api, instrumentation.ServiceClassroom, instrumentation.OperationReturn, submissionID,
		func(ctx context.Context) (*classroom.Empty, error) {
			return c.service.Courses.CourseWork.StudentSubmissions.
				Return(courseID, courseWorkID, submissionID, &classroom.ReturnStudentSubmissionRequest{}).
				Context(ctx).
				Do()
		})
	if err != nil {
		return fmt.Errorf("failed to return submission %s: %w", submissionID, err)
	}
	return nil
}

// GetStudentProfile fetches the email and name of a user.
func (c *Client) GetStudentProfile(ctx context.Context, userID string) (*StudentProfile, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	p, err := google.Call(ctx, c.api, instrumentation.ServiceClassroom, instrumentation.OperationGet, userID,
		func(ctx context.Context) (*classroom.UserProfile, error) {
			return c.service.UserProfiles.Get(userID).Context(ctx).Do()
		})
	if err != nil {
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}
	profile := convertProfile(p)
	return &profile, nil
}
