package activity

type WorkFromHomeSubmission struct {
	Dates       []string `json:"dates" binding:"required,min=1,dive,required"`
	Reason      string   `json:"reason" binding:"required"`
	RequestType string   `json:"request_type" binding:"omitempty,oneof=wfh hybrid"`
	StartTime   *string  `json:"start_time"`
	EndTime     *string  `json:"end_time"`
}

type PartialDaySubmission struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

type RegularizationSubmission struct {
	// EmployeeID is optional; admins may regularize on behalf of others.
	EmployeeID string `json:"employee_id" binding:"omitempty,uuid"`
	Date       string `json:"date" binding:"required"`
	ClockIn    string `json:"clock_in" binding:"required"`
	ClockOut   string `json:"clock_out" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
}

type DecideRequest struct {
	ID     string  `json:"id" binding:"required,uuid"`
	Type   string  `json:"type" binding:"required,oneof=wfh partial regularization"`
	Action string  `json:"action" binding:"required,oneof=approve reject"`
	Notes  *string `json:"notes"`
}

type RequestResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	Date         string  `json:"date"`
	RequestType  string  `json:"request_type,omitempty"`
	StartTime    *string `json:"start_time,omitempty"`
	EndTime      *string `json:"end_time,omitempty"`
	ClockIn      string  `json:"clock_in,omitempty"`
	ClockOut     string  `json:"clock_out,omitempty"`
	Duration     string  `json:"duration,omitempty"`
	Reason       string  `json:"reason"`
	Status       string  `json:"status"`
	ApprovedBy   *string `json:"approved_by,omitempty"`
	ApprovalDate *string `json:"approval_date,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

type SubmissionResponse struct {
	IDs []string `json:"ids"`
}

type OwnRequestsResponse struct {
	WorkFromHome   []RequestResponse `json:"work_from_home"`
	PartialDay     []RequestResponse `json:"partial_day"`
	Regularization []RequestResponse `json:"regularization"`
}
