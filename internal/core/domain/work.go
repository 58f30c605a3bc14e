package domain

// WorkStatus is the progress state shared by projects and tasks.
type WorkStatus string

const (
	StatusOpen       WorkStatus = "Open"
	StatusInProgress WorkStatus = "In Progress"
	StatusCompleted  WorkStatus = "Completed"
)

// Finished reports whether the work item no longer blocks its owner's deletion.
func (s WorkStatus) Finished() bool {
	return s == StatusCompleted
}

// Project is a unit of work owned by a Manager.
type Project struct {
	ID                string     `json:"id"`
	Code              string     `json:"code"`
	Name              string     `json:"name"`
	Status            WorkStatus `json:"status"`
	AssignedManagerID int64      `json:"assigned_manager_id"`
}

// Task is a unit of work owned by an Employee.
type Task struct {
	ID                 string     `json:"id"`
	ProjectCode        string     `json:"project_code"`
	Subject            string     `json:"subject"`
	Status             WorkStatus `json:"status"`
	AssignedEmployeeID int64      `json:"assigned_employee_id"`
}
