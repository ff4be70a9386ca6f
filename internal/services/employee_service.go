package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/yukikurage/employee-management/internal/constants"
	"github.com/yukikurage/employee-management/internal/forms"
	"github.com/yukikurage/employee-management/internal/models"
	"github.com/yukikurage/employee-management/internal/repository"
	"github.com/yukikurage/employee-management/internal/storage"
)

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrEmployeeEmailTaken = errors.New("employee email already in use")
	ErrInvalidUploadName  = errors.New("uploaded file name is not usable")
	ErrUploadTooLarge     = errors.New("uploaded file is too large")
	ErrUnsupportedUpload  = errors.New("uploaded file is not a supported image")
	ErrStoreUpload        = errors.New("failed to store uploaded file")
)

// sniffLen is how much of an upload is read to detect its content type.
const sniffLen = 3072

// PictureTypes are the content types accepted for profile pictures.
var PictureTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// IsPictureType reports whether contentType is one of PictureTypes.
func IsPictureType(contentType string) bool {
	for _, t := range PictureTypes {
		if contentType == t {
			return true
		}
	}
	return false
}

// Upload is an optional profile picture attached to an employee form.
type Upload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

func (u *Upload) present() bool {
	return u != nil && u.Filename != ""
}

// EmployeeService handles employee records and their profile pictures.
type EmployeeService struct {
	employeeRepo   repository.EmployeeRepository
	store          storage.Storage
	maxUploadBytes int64
}

// NewEmployeeService creates a new EmployeeService.
func NewEmployeeService(employeeRepo repository.EmployeeRepository, store storage.Storage, maxUploadBytes int64) *EmployeeService {
	return &EmployeeService{
		employeeRepo:   employeeRepo,
		store:          store,
		maxUploadBytes: maxUploadBytes,
	}
}

// MaxUploadBytes is the per-file upload cap; zero means unlimited.
func (s *EmployeeService) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

// List returns all employees ordered by ID.
func (s *EmployeeService) List() ([]models.Employee, error) {
	employees, err := s.employeeRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

// Get returns a single employee.
func (s *EmployeeService) Get(id uint64) (*models.Employee, error) {
	employee, err := s.employeeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	return employee, nil
}

// Create stores the optional picture and then inserts the employee.
func (s *EmployeeService) Create(ctx context.Context, fields forms.EmployeeFields, upload *Upload) (*models.Employee, error) {
	name, err := s.checkUpload(upload)
	if err != nil {
		return nil, err
	}
	if err := s.checkEmailFree(fields.Email, 0); err != nil {
		return nil, err
	}

	employee := &models.Employee{}
	fields.Apply(employee)

	if name != "" {
		if err := s.store.Save(ctx, name, upload.Reader); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUpload, err)
		}
		employee.ProfilePic = name
	}

	if err := s.employeeRepo.Create(employee); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmployeeEmailTaken
		}
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	return employee, nil
}

// Update overwrites every form-backed field of the employee. The stored
// picture name only changes when a new file is attached; the previous file
// is left in storage.
func (s *EmployeeService) Update(ctx context.Context, id uint64, fields forms.EmployeeFields, upload *Upload) (*models.Employee, error) {
	employee, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	name, err := s.checkUpload(upload)
	if err != nil {
		return nil, err
	}
	if err := s.checkEmailFree(fields.Email, employee.ID); err != nil {
		return nil, err
	}

	fields.Apply(employee)

	if name != "" {
		if err := s.store.Save(ctx, name, upload.Reader); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUpload, err)
		}
		employee.ProfilePic = name
	}

	if err := s.employeeRepo.Update(employee); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrEmployeeEmailTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}
	return employee, nil
}

// Delete removes the employee row. The stored picture, if any, is kept.
func (s *EmployeeService) Delete(id uint64) error {
	if err := s.employeeRepo.Delete(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}

// OpenPicture opens a stored profile picture by its sanitized name.
func (s *EmployeeService) OpenPicture(ctx context.Context, name string) (*storage.Object, error) {
	return s.store.Open(ctx, name)
}

// checkUpload returns the sanitized name of a present upload, or "" when no
// file was attached. The content must sniff as one of PictureTypes whatever
// the file name says; upload.Reader is rewound over the sniffed bytes.
func (s *EmployeeService) checkUpload(upload *Upload) (string, error) {
	if !upload.present() {
		return "", nil
	}
	if s.maxUploadBytes > 0 && upload.Size > s.maxUploadBytes {
		return "", ErrUploadTooLarge
	}
	name := storage.SecureFilename(upload.Filename)
	if name == "" || len(name) > constants.MaxProfilePicName {
		return "", ErrInvalidUploadName
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(upload.Reader, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]
	if detected := mimetype.Detect(head); !IsPictureType(detected.String()) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedUpload, detected.String())
	}
	upload.Reader = io.MultiReader(bytes.NewReader(head), upload.Reader)
	return name, nil
}

func (s *EmployeeService) checkEmailFree(email string, selfID uint64) error {
	existing, err := s.employeeRepo.FindByEmail(email)
	switch {
	case err == nil:
		if existing.ID != selfID {
			return ErrEmployeeEmailTaken
		}
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check employee email: %w", err)
	}
}
