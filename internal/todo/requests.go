package todo

import "strings"

// CreateListRequest is the body of POST /todo-list/create.
type CreateListRequest struct {
	Name *string `json:"name"`
}

func (r CreateListRequest) Validate() error {
	var errs ValidationErrors
	if r.Name == nil || strings.TrimSpace(*r.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "is required"})
	}
	return errs.orNil()
}

// CreateItemRequest is the body of POST /todo-item/create.
type CreateItemRequest struct {
	Description *string `json:"description"`
	ListID      *int64  `json:"listId"`
}

func (r CreateItemRequest) Validate() error {
	var errs ValidationErrors
	if r.Description == nil || strings.TrimSpace(*r.Description) == "" {
		errs = append(errs, ValidationError{Field: "description", Message: "is required"})
	}
	if r.ListID == nil {
		errs = append(errs, ValidationError{Field: "listId", Message: "is required"})
	} else if *r.ListID <= 0 {
		errs = append(errs, ValidationError{Field: "listId", Message: "must be a positive integer"})
	}
	return errs.orNil()
}

// UpdateCompletionRequest is the body of the list and item update routes.
type UpdateCompletionRequest struct {
	Completed *bool `json:"completed"`
}

func (r UpdateCompletionRequest) Validate() error {
	if r.Completed == nil {
		return ValidationErrors{{Field: "completed", Message: "is required"}}
	}
	return nil
}

func validateID(field string, id int64) error {
	if id <= 0 {
		return ValidationErrors{{Field: field, Message: "must be a positive integer"}}
	}
	return nil
}
