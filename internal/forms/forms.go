package forms

import (
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sandeepkv93/tasktag/internal/color"
	"github.com/sandeepkv93/tasktag/internal/model"
)

var ErrInvalid = errors.New("forms: invalid input")

type FieldErrors map[string]string

func (fe FieldErrors) add(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, fe[f]))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(parts, "; "))
}

type TagForm struct {
	Name  string
	Color string
}

func (f TagForm) Validate() FieldErrors {
	fe := FieldErrors{}
	switch {
	case f.Name == "":
		fe.add("name", "Tag name is required")
	case utf8.RuneCountInString(f.Name) > model.MaxTagNameLength:
		fe.add("name", "Tag name cannot exceed 20 characters")
	case strings.TrimSpace(f.Name) == "":
		fe.add("name", "Tag name cannot be only whitespace")
	}
	if !color.IsValidInput(f.Color) {
		fe.add("color", "Please enter a valid color (hex format)")
	}
	return fe
}

// Payload is the body sent on create or update. The color is always
// canonical.
func (f TagForm) Payload() model.TagInput {
	return model.TagInput{Name: f.Name, Color: color.Submission(f.Color)}
}

type TaskForm struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     string
	Tags        []model.Tag
}

func NewTaskForm(task *model.Task) TaskForm {
	if task == nil {
		return TaskForm{
			Status:   string(model.StatusPending),
			Priority: string(model.PriorityMedium),
			Tags:     []model.Tag{},
		}
	}
	f := TaskForm{
		Title:       task.Title,
		Description: task.DescriptionText(),
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		Tags:        append([]model.Tag{}, task.Tags...),
	}
	if task.DueDate != nil {
		f.DueDate = task.DueDate.String()
	}
	return f
}

func (f TaskForm) Validate() FieldErrors {
	fe := FieldErrors{}
	if strings.TrimSpace(f.Title) == "" {
		fe.add("title", "Task title is required")
	}
	if !model.Status(f.Status).IsValid() {
		fe.add("status", "Please select a valid status")
	}
	if !model.Priority(f.Priority).IsValid() {
		fe.add("priority", "Please select a valid priority")
	}
	if strings.TrimSpace(f.DueDate) != "" {
		if _, err := model.ParseDate(f.DueDate); err != nil {
			fe.add("due_date", "Due date must be YYYY-MM-DD")
		}
	}
	return fe
}

func (f *TaskForm) ToggleTag(tag model.Tag) {
	f.Tags = model.ToggleTag(f.Tags, tag)
}

// Task builds the task to submit. Call Validate first.
func (f TaskForm) Task() (model.Task, error) {
	if err := f.Validate().Err(); err != nil {
		return model.Task{}, err
	}
	t := model.Task{
		Title:    strings.TrimSpace(f.Title),
		Status:   model.Status(f.Status),
		Priority: model.Priority(f.Priority),
		Tags:     append([]model.Tag{}, f.Tags...),
	}
	if desc := f.Description; desc != "" {
		t.Description = &desc
	}
	if strings.TrimSpace(f.DueDate) != "" {
		d, err := model.ParseDate(f.DueDate)
		if err != nil {
			return model.Task{}, err
		}
		t.DueDate = &d
	}
	return t, nil
}

type LoginForm struct {
	Email    string
	Password string
}

func (f LoginForm) Validate() FieldErrors {
	fe := FieldErrors{}
	validateEmail(fe, f.Email)
	if f.Password == "" {
		fe.add("password", "Password is required")
	}
	return fe
}

type RegisterForm struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

func (f RegisterForm) Validate() FieldErrors {
	fe := FieldErrors{}
	switch {
	case f.Name == "":
		fe.add("name", "Name is required")
	case utf8.RuneCountInString(f.Name) < 2:
		fe.add("name", "Name must be at least 2 characters")
	}
	validateEmail(fe, f.Email)
	validateNewPassword(fe, "password", f.Password)
	if f.PasswordConfirmation == "" {
		fe.add("password_confirmation", "Password confirmation is required")
	} else if f.Password != f.PasswordConfirmation {
		fe.add("password_confirmation", "Passwords do not match")
	}
	return fe
}

type ForgotPasswordForm struct {
	Email string
}

func (f ForgotPasswordForm) Validate() FieldErrors {
	fe := FieldErrors{}
	validateEmail(fe, f.Email)
	return fe
}

type ResetPasswordForm struct {
	Token           string
	Email           string
	Password        string
	ConfirmPassword string
}

func (f ResetPasswordForm) Validate() FieldErrors {
	fe := FieldErrors{}
	validateNewPassword(fe, "password", f.Password)
	if f.ConfirmPassword == "" {
		fe.add("confirm_password", "Confirm password is required")
	} else if f.Password != f.ConfirmPassword {
		fe.add("confirm_password", "Passwords do not match")
	}
	if strings.TrimSpace(f.Token) == "" || strings.TrimSpace(f.Email) == "" {
		fe.add("link", "Invalid reset link. Please request a new password reset.")
	}
	return fe
}

type VerifyEmailForm struct {
	ID    string
	Token string
}

func (f VerifyEmailForm) Validate() FieldErrors {
	fe := FieldErrors{}
	if strings.TrimSpace(f.Token) == "" {
		fe.add("token", "Invalid verification link. No token provided.")
	}
	if _, err := strconv.ParseInt(strings.TrimSpace(f.ID), 10, 64); err != nil {
		fe.add("id", "Invalid verification link. No user ID provided.")
	}
	return fe
}

// UserID returns the parsed id. Validate first.
func (f VerifyEmailForm) UserID() int64 {
	id, _ := strconv.ParseInt(strings.TrimSpace(f.ID), 10, 64)
	return id
}

func validateEmail(fe FieldErrors, email string) {
	if email == "" {
		fe.add("email", "Email is required")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		fe.add("email", "Please enter a valid email address")
	}
}

func validateNewPassword(fe FieldErrors, field, password string) {
	switch {
	case password == "":
		fe.add(field, "Password is required")
	case utf8.RuneCountInString(password) < 8:
		fe.add(field, "Password must be at least 8 characters")
	}
}
