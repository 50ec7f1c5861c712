package dto

type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     Date   `json:"dueDate"`
}

// UpdateTaskRequest fields are all optional; only those present are applied.
type UpdateTaskRequest struct {
	Title       *string      `json:"title" validate:"omitempty,max=200"`
	Description *string      `json:"description" validate:"omitempty,max=2000"`
	Priority    *string      `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     NullableDate `json:"dueDate"`
	Status      *string      `json:"status"`
	Completed   *bool        `json:"completed"`
}
