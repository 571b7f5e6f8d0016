package leave

type CreateLeaveRequest struct {
	// EmployeeID may be set by callers holding leave:approve to file on
	// another employee's behalf; everyone else files for themselves.
	EmployeeID    string  `json:"employee_id" binding:"omitempty,uuid"`
	LeaveType     string  `json:"leave_type" binding:"required,oneof=sick vacation personal paid_leave maternity paternity unpaid emergency birthday anniversary comp_off overseas partial"`
	StartDate     string  `json:"start_date" binding:"required"`
	EndDate       string  `json:"end_date" binding:"required"`
	Reason        string  `json:"reason" binding:"required"`
	IsHalfDay     bool    `json:"is_half_day"`
	HalfDayPeriod string  `json:"half_day_period" binding:"omitempty,oneof=first_half second_half"`
	Notes         *string `json:"notes"`
}

type UpdateLeaveStatusRequest struct {
	Status          string `json:"status" binding:"required,oneof=approved rejected cancelled"`
	RejectionReason string `json:"rejection_reason" binding:"omitempty,min=10"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	TotalDays       int     `json:"total_days"`
	Duration        string  `json:"duration"`
	Reason          string  `json:"reason"`
	Notes           *string `json:"notes,omitempty"`
	Status          string  `json:"status"`
	CreatedBy       string  `json:"created_by"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovalDate    *string `json:"approval_date,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	Warning         string  `json:"warning,omitempty"`
}

type BalanceResponse struct {
	EmployeeID              string `json:"employee_id"`
	Year                    int    `json:"year"`
	PaidLeaveQuota          string `json:"paid_leave_quota"`
	PaidLeaveUsed           string `json:"paid_leave_used"`
	PaidLeaveRemaining      string `json:"paid_leave_remaining"`
	EmergencyLeaveUsedCount int    `json:"emergency_leave_used_count"`
	BirthdayLeaveUsed       bool   `json:"birthday_leave_used"`
	AnniversaryLeaveUsed    bool   `json:"anniversary_leave_used"`
	MaternityLeaveQuota     string `json:"maternity_leave_quota"`
	MaternityLeaveUsed      string `json:"maternity_leave_used"`
	PaternityLeaveQuota     string `json:"paternity_leave_quota"`
	PaternityLeaveUsed      string `json:"paternity_leave_used"`
}
