package personio

import (
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Employee is a Personio employee record, reduced to the fields the
// extraction streams emit.
type Employee struct {
	ID         int64               `json:"id"`
	FirstName  string              `json:"first_name"`
	LastName   string              `json:"last_name"`
	Email      string              `json:"email"`
	Position   string              `json:"position,omitempty"`
	Department string              `json:"department,omitempty"`
	Status     string              `json:"status,omitempty"`
	HireDate   *openapi_types.Date `json:"hire_date,omitempty"`
}

// TimeOff is one absence period.
type TimeOff struct {
	ID           int64              `json:"id"`
	EmployeeID   int64              `json:"employee_id"`
	TimeOffType  string             `json:"time_off_type,omitempty"`
	StartDate    openapi_types.Date `json:"start_date"`
	EndDate      openapi_types.Date `json:"end_date"`
	DaysCount    float64            `json:"days_count"`
	HalfDayStart bool               `json:"half_day_start,omitempty"`
	HalfDayEnd   bool               `json:"half_day_end,omitempty"`
	Status       string             `json:"status,omitempty"`
}

// Attendance is one tracked attendance day.
type Attendance struct {
	ID         int64              `json:"id"`
	EmployeeID int64              `json:"employee"`
	Date       openapi_types.Date `json:"date"`
	StartTime  string             `json:"start_time"`
	EndTime    string             `json:"end_time"`
	Break      int                `json:"break"`
	Comment    string             `json:"comment,omitempty"`
}

// Metadata is the paging block Personio returns alongside list data.
type Metadata struct {
	TotalElements int `json:"total_elements"`
	CurrentPage   int `json:"current_page"`
	TotalPages    int `json:"total_pages"`
}

// Page selects one page of a paginated listing.
type Page struct {
	Limit  int
	Offset int
}

// Window restricts time-bound listings to a date range. Nil bounds are
// omitted from the request.
type Window struct {
	Start *openapi_types.Date
	End   *openapi_types.Date
}
