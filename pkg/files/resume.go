package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/campushire/portal/pkg/observability"
	"github.com/campushire/portal/pkg/storage"
)

// MaxResumeSize is the upload size cap in bytes
const MaxResumeSize = 5 << 20 // 5 MiB

// ReviewStatus is the review state of an uploaded resume
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusRejected ReviewStatus = "rejected"
)

var (
	// ErrUnsupportedType is returned for file types other than PDF and Word
	ErrUnsupportedType = errors.New("unsupported resume file type")
	// ErrTooLarge is returned when the upload exceeds MaxResumeSize
	ErrTooLarge = errors.New("resume exceeds size limit")
	// ErrStudentNotFound is returned when no student record matches
	ErrStudentNotFound = errors.New("student record not found")
	// ErrInvalidStatus is returned for review statuses outside the enum
	ErrInvalidStatus = errors.New("invalid review status")
)

var allowedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ResumeService uploads resumes to blob storage and tracks review state
// on the student record
type ResumeService struct {
	blobs   BlobStore
	store   storage.RecordStore
	metrics *observability.Metrics
}

// NewResumeService creates a resume service. metrics may be nil.
func NewResumeService(blobs BlobStore, store storage.RecordStore, metrics *observability.Metrics) *ResumeService {
	return &ResumeService{blobs: blobs, store: store, metrics: metrics}
}

// Upload stores the file and marks the student's resume pending review.
// The student is located by user id; a re-upload replaces the URL and
// resets the review state.
func (s *ResumeService) Upload(ctx context.Context, userID, filename string, content io.Reader) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		s.observe("rejected")
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxResumeSize+1))
	if err != nil {
		s.observe("error")
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxResumeSize {
		s.observe("rejected")
		return "", ErrTooLarge
	}

	students, err := s.store.Select(ctx, storage.TableStudents, storage.Filter{"user_id": userID})
	if err != nil {
		s.observe("error")
		return "", fmt.Errorf("locate student: %w", err)
	}
	if len(students) == 0 {
		s.observe("error")
		return "", ErrStudentNotFound
	}

	key := fmt.Sprintf("resumes/%s/%s%s", userID, uuid.NewString(), ext)
	if err := s.blobs.Put(ctx, key, strings.NewReader(string(data)), contentType); err != nil {
		s.observe("error")
		return "", fmt.Errorf("store resume: %w", err)
	}

	err = s.store.Update(ctx, storage.TableStudents,
		storage.Filter{"user_id": userID},
		storage.Row{
			"resume_url":    key,
			"resume_status": string(StatusPending),
			"resume_notes":  "",
		})
	if err != nil {
		s.observe("error")
		return "", fmt.Errorf("update student record: %w", err)
	}

	s.observe("ok")
	return key, nil
}

// Review records a staff decision on a student's resume
func (s *ResumeService) Review(ctx context.Context, studentID string, status ReviewStatus, notes string) error {
	if status != StatusApproved && status != StatusRejected {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	err := s.store.Update(ctx, storage.TableStudents,
		storage.Filter{"id": studentID},
		storage.Row{
			"resume_status": string(status),
			"resume_notes":  notes,
		})
	if errors.Is(err, storage.ErrNotFound) {
		return ErrStudentNotFound
	}
	return err
}

// Open returns the stored resume for a student record
func (s *ResumeService) Open(ctx context.Context, studentID string) (io.ReadCloser, error) {
	students, err := s.store.Select(ctx, storage.TableStudents, storage.Filter{"id": studentID})
	if err != nil {
		return nil, fmt.Errorf("locate student: %w", err)
	}
	if len(students) == 0 {
		return nil, ErrStudentNotFound
	}

	key, _ := students[0]["resume_url"].(string)
	if key == "" {
		return nil, ErrObjectNotFound
	}
	return s.blobs.Get(ctx, key)
}

func (s *ResumeService) observe(status string) {
	if s.metrics != nil {
		s.metrics.ResumeUploadsTotal.WithLabelValues(status).Inc()
	}
}
