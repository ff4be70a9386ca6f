package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/employee-management/internal/models"
)

type EmployeeHandlerTestSuite struct {
	handlerSuite
}

const (
	pngImage  = "\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR\x00\x00\x00\x01\x00\x00\x00\x01"
	jpegImage = "\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01"
)

func TestEmployeeHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(EmployeeHandlerTestSuite))
}

func employeeForm(first, email string) url.Values {
	return url.Values{
		"first_name":  {first},
		"last_name":   {"Tester"},
		"email":       {email},
		"phone":       {"555-0100"},
		"department":  {"Engineering"},
		"position":    {"Developer"},
		"salary":      {"5000.50"},
		"date_joined": {"2024-03-01"},
	}
}

func (s *EmployeeHandlerTestSuite) TestAnonymousIsRedirected() {
	for _, path := range []string{"/employees", "/employees/1", "/employees/create", "/uploads/a.png", "/"} {
		resp := s.get(path)
		s.Equal(http.StatusSeeOther, resp.Status, path)
		s.Equal("/login", resp.Location, path)
	}

	resp := s.postMultipart("/employees/create", employeeForm("Ada", "ada@x.com"), "", "")
	s.Equal(http.StatusSeeOther, resp.Status)
	s.Zero(s.countEmployees())
}

func (s *EmployeeHandlerTestSuite) TestListEmployees() {
	s.createEmployee("Grace", "grace@x.com")
	s.createEmployee("Ada", "ada@x.com")
	s.loginAsUser()

	resp := s.get("/employees")
	s.Equal(http.StatusOK, resp.Status)
	s.Contains(resp.Body, "grace@x.com")
	s.Contains(resp.Body, "ada@x.com")
	s.Less(strings.Index(resp.Body, "grace@x.com"), strings.Index(resp.Body, "ada@x.com"))
	// non-admins get no edit controls
	s.NotContains(resp.Body, "/edit")
}

func (s *EmployeeHandlerTestSuite) TestGetEmployee() {
	employee := s.createEmployee("Grace", "grace@x.com")
	s.loginAsUser()

	resp := s.get(fmt.Sprintf("/employees/%d", employee.ID))
	s.Equal(http.StatusOK, resp.Status)
	s.Contains(resp.Body, "Grace")

	s.Equal(http.StatusNotFound, s.get("/employees/999").Status)
	s.Equal(http.StatusNotFound, s.get("/employees/abc").Status)
}

func (s *EmployeeHandlerTestSuite) TestGetEmployee_RepeatedReadsMatch() {
	employee := s.createEmployee("Grace", "grace@x.com")
	s.loginAsUser()
	s.get("/employees") // drains the login flash

	path := fmt.Sprintf("/employees/%d", employee.ID)
	first := s.get(path)
	second := s.get(path)
	s.Equal(http.StatusOK, first.Status)
	s.Equal(http.StatusOK, second.Status)
	s.Equal(first.Body, second.Body)

	var stored models.Employee
	s.Require().NoError(s.db.First(&stored, employee.ID).Error)
	s.Equal(employee.UpdatedAt.Unix(), stored.UpdatedAt.Unix(), "reads do not touch the row")
}

func (s *EmployeeHandlerTestSuite) TestNonAdminCannotMutate() {
	employee := s.createEmployee("Grace", "grace@x.com")
	s.loginAsUser()

	resp := s.get("/employees/create")
	s.Equal(http.StatusSeeOther, resp.Status)
	s.Equal("/login", resp.Location)
	s.Contains(s.get("/login").Body, "Admin access required")

	s.postMultipart("/employees/create", employeeForm("Ada", "ada@x.com"), "", "")
	s.postMultipart(fmt.Sprintf("/employees/%d/edit", employee.ID), employeeForm("Hacked", "grace@x.com"), "", "")
	s.postForm(fmt.Sprintf("/employees/%d/delete", employee.ID), nil)

	var stored models.Employee
	s.Require().NoError(s.db.First(&stored, employee.ID).Error)
	s.Equal("Grace", stored.FirstName)
	s.Equal(int64(1), s.countEmployees())
}

func (s *EmployeeHandlerTestSuite) TestCreateEmployee_WithSanitizedUpload() {
	s.loginAsAdmin()

	s.Equal(http.StatusOK, s.get("/employees/create").Status)

	resp := s.postMultipart("/employees/create", employeeForm("Ada", "ada@x.com"), "../../etc/my photo.png", pngImage)
	s.Equal(http.StatusSeeOther, resp.Status, resp.Body)
	s.Equal("/employees", resp.Location)
	s.Contains(s.get("/employees").Body, "Employee added")

	var stored models.Employee
	s.Require().NoError(s.db.Where("email = ?", "ada@x.com").First(&stored).Error)
	s.Equal("my_photo.png", stored.ProfilePic)
	s.Require().NotNil(stored.Salary)
	s.Equal(5000.50, *stored.Salary)
	s.Require().NotNil(stored.DateJoined)
	s.Equal("2024-03-01", stored.DateJoined.Format("2006-01-02"))

	data, err := os.ReadFile(filepath.Join(s.uploadDir, "my_photo.png"))
	s.Require().NoError(err)
	s.Equal(pngImage, string(data))

	picture := s.get("/uploads/my_photo.png")
	s.Equal(http.StatusOK, picture.Status)
	s.Equal(pngImage, picture.Body)
	s.Equal("image/png", picture.Header.Get("Content-Type"))
	s.Empty(picture.Header.Get("Content-Disposition"))
	s.Contains(picture.Header.Get("Content-Security-Policy"), "sandbox")
}

func (s *EmployeeHandlerTestSuite) TestCreateEmployee_RejectsActiveContent() {
	s.loginAsAdmin()

	for filename, content := range map[string]string{
		"x.html": "<html><body><script>alert(document.cookie)</script></body></html>",
		"x.svg":  `<svg xmlns="http://www.w3.org/2000/svg" onload="alert(1)"><script>alert(2)</script></svg>`,
		"x.png":  "<script>alert(3)</script>",
	} {
		resp := s.postMultipart("/employees/create", employeeForm("Ada", "ada@x.com"), filename, content)
		s.Equal(http.StatusUnprocessableEntity, resp.Status, filename)
		s.Contains(resp.Body, "Only PNG, JPEG, GIF or WebP images are allowed.", filename)

		_, err := os.Stat(filepath.Join(s.uploadDir, filename))
		s.True(os.IsNotExist(err), filename)
	}
	s.Zero(s.countEmployees())
}

func (s *EmployeeHandlerTestSuite) TestServePicture_NonImageIsDownloaded() {
	s.Require().NoError(os.WriteFile(filepath.Join(s.uploadDir, "legacy.html"), []byte("<script>alert(1)</script>"), 0o644))
	s.Require().NoError(os.WriteFile(filepath.Join(s.uploadDir, "logo.svg"), []byte("<svg><script>alert(1)</script></svg>"), 0o644))
	s.loginAsUser()

	for _, name := range []string{"legacy.html", "logo.svg"} {
		resp := s.get("/uploads/" + name)
		s.Equal(http.StatusOK, resp.Status, name)
		s.Equal("application/octet-stream", resp.Header.Get("Content-Type"), name)
		s.Equal(`attachment; filename=`+name, resp.Header.Get("Content-Disposition"), name)
		s.Contains(resp.Header.Get("Content-Security-Policy"), "sandbox", name)
		s.Equal("nosniff", resp.Header.Get("X-Content-Type-Options"), name)
	}
}

func (s *EmployeeHandlerTestSuite) TestCreateEmployee_ValidationErrors() {
	s.loginAsAdmin()

	form := employeeForm("", "not-an-email")
	form.Set("salary", "lots")
	form.Set("date_joined", "yesterday")

	resp := s.postMultipart("/employees/create", form, "", "")
	s.Equal(http.StatusUnprocessableEntity, resp.Status)
	s.Contains(resp.Body, "This field is required.")
	s.Contains(resp.Body, "Invalid email address.")
	s.Contains(resp.Body, "Not a valid float value.")
	s.Contains(resp.Body, "Not a valid date value.")
	s.Contains(resp.Body, `value="lots"`)
	s.Zero(s.countEmployees())
}

func (s *EmployeeHandlerTestSuite) TestCreateEmployee_DuplicateEmail() {
	s.createEmployee("Grace", "grace@x.com")
	s.loginAsAdmin()

	resp := s.postMultipart("/employees/create", employeeForm("Other", "grace@x.com"), "", "")
	s.Equal(http.StatusUnprocessableEntity, resp.Status)
	s.Contains(resp.Body, "Email already in use.")
	s.Equal(int64(1), s.countEmployees())
}

func (s *EmployeeHandlerTestSuite) TestCreateEmployee_UploadRejected() {
	s.loginAsAdmin()

	tooBig := s.postMultipart("/employees/create", employeeForm("Ada", "ada@x.com"), "big.png", strings.Repeat("x", 2048))
	s.Equal(http.StatusUnprocessableEntity, tooBig.Status)
	s.Contains(tooBig.Body, "File cannot be larger than 1024 bytes.")

	unusable := s.postMultipart("/employees/create", employeeForm("Ada", "ada@x.com"), "$$$", "data")
	s.Equal(http.StatusUnprocessableEntity, unusable.Status)
	s.Contains(unusable.Body, "Invalid file name.")

	s.Zero(s.countEmployees())
}

func (s *EmployeeHandlerTestSuite) TestEditEmployee_PrefillsAndUpdates() {
	employee := s.createEmployee("Grace", "grace@x.com")
	s.Require().NoError(s.db.Model(employee).Update("profile_pic", "grace.png").Error)
	s.loginAsAdmin()

	page := s.get(fmt.Sprintf("/employees/%d/edit", employee.ID))
	s.Equal(http.StatusOK, page.Status)
	s.Contains(page.Body, `value="grace@x.com"`)

	form := employeeForm("Grace", "grace@x.com")
	form.Set("department", "")
	form.Set("salary", "")
	resp := s.postMultipart(fmt.Sprintf("/employees/%d/edit", employee.ID), form, "", "")
	s.Equal(http.StatusSeeOther, resp.Status, resp.Body)
	s.Contains(s.get("/employees").Body, "Employee updated")

	var stored models.Employee
	s.Require().NoError(s.db.First(&stored, employee.ID).Error)
	s.Equal("Tester", stored.LastName)
	s.Equal("", stored.Department)
	s.Nil(stored.Salary)
	s.Equal("grace.png", stored.ProfilePic)
}

func (s *EmployeeHandlerTestSuite) TestEditEmployee_ReplacesPicture() {
	employee := s.createEmployee("Grace", "grace@x.com")
	s.loginAsAdmin()

	resp := s.postMultipart(fmt.Sprintf("/employees/%d/edit", employee.ID), employeeForm("Grace", "grace@x.com"), "new.jpg", jpegImage)
	s.Equal(http.StatusSeeOther, resp.Status, resp.Body)

	var stored models.Employee
	s.Require().NoError(s.db.First(&stored, employee.ID).Error)
	s.Equal("new.jpg", stored.ProfilePic)
}

func (s *EmployeeHandlerTestSuite) TestEditEmployee_NotFound() {
	s.loginAsAdmin()

	s.Equal(http.StatusNotFound, s.get("/employees/42/edit").Status)
	resp := s.postMultipart("/employees/42/edit", employeeForm("Ghost", "ghost@x.com"), "", "")
	s.Equal(http.StatusNotFound, resp.Status)
	s.Zero(s.countEmployees())
}

func (s *EmployeeHandlerTestSuite) TestDeleteEmployee() {
	employee := s.createEmployee("Grace", "grace@x.com")
	s.loginAsAdmin()

	resp := s.postForm(fmt.Sprintf("/employees/%d/delete", employee.ID), nil)
	s.Equal(http.StatusSeeOther, resp.Status)
	s.Equal("/employees", resp.Location)
	s.Contains(s.get("/employees").Body, "Employee deleted")
	s.Zero(s.countEmployees())

	again := s.postForm(fmt.Sprintf("/employees/%d/delete", employee.ID), nil)
	s.Equal(http.StatusNotFound, again.Status)
}

func (s *EmployeeHandlerTestSuite) TestServePicture_NotFound() {
	s.loginAsUser()

	s.Equal(http.StatusNotFound, s.get("/uploads/missing.png").Status)
	s.Equal(http.StatusNotFound, s.get("/uploads/..%2Fsecret").Status)
}
