package domain

// EnforceRequest asks whether an employee may perform an action on a resource.
type EnforceRequest struct {
	EmployeeID string
	Resource   string
	Action     string
}
