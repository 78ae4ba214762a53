package employee

type CreateEmployeeRequest struct {
	Email              string  `json:"email" binding:"required,email"`
	Password           string  `json:"password" binding:"required,min=8"`
	FullName           string  `json:"full_name" binding:"required"`
	Phone              *string `json:"phone" binding:"omitempty,max=30"`
	NIK                *string `json:"nik" binding:"omitempty,max=32"`
	Gender             *string `json:"gender" binding:"omitempty,oneof=M F"`
	BirthDate          *string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	Address            *string `json:"address"`
	JoinDate           string  `json:"join_date" binding:"required,datetime=2006-01-02"`
	DepartmentID       *string `json:"department_id" binding:"omitempty,uuid"`
	PositionID         *string `json:"position_id" binding:"omitempty,uuid"`
	GradeID            *string `json:"grade_id" binding:"omitempty,uuid"`
	EmploymentStatusID *string `json:"employment_status_id" binding:"omitempty,uuid"`
	ManagerID          *string `json:"manager_id" binding:"omitempty,uuid"`
}

// UpdateEmployeeRequest touches the profile only. Email, password and the
// employee number are managed elsewhere.
type UpdateEmployeeRequest struct {
	NIK                *string `json:"nik" binding:"omitempty,max=32"`
	Gender             *string `json:"gender" binding:"omitempty,oneof=M F"`
	BirthDate          *string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	Address            *string `json:"address"`
	ResignDate         *string `json:"resign_date" binding:"omitempty,datetime=2006-01-02"`
	DepartmentID       *string `json:"department_id" binding:"omitempty,uuid"`
	PositionID         *string `json:"position_id" binding:"omitempty,uuid"`
	GradeID            *string `json:"grade_id" binding:"omitempty,uuid"`
	EmploymentStatusID *string `json:"employment_status_id" binding:"omitempty,uuid"`
	ManagerID          *string `json:"manager_id" binding:"omitempty,uuid"`
	IsActive           *bool   `json:"is_active"`
}

type EmployeeResponse struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	EmployeeNumber string  `json:"employee_number"`
	FullName       string  `json:"full_name"`
	Email          string  `json:"email"`
	Phone          *string `json:"phone,omitempty"`
	NIK            *string `json:"nik,omitempty"`
	Gender         *string `json:"gender,omitempty"`
	BirthDate      *string `json:"birth_date,omitempty"`
	Address        *string `json:"address,omitempty"`
	JoinDate       string  `json:"join_date"`
	ResignDate     *string `json:"resign_date,omitempty"`

	DepartmentID     *string `json:"department_id,omitempty"`
	DepartmentName   *string `json:"department_name,omitempty"`
	PositionID       *string `json:"position_id,omitempty"`
	PositionName     *string `json:"position_name,omitempty"`
	GradeID          *string `json:"grade_id,omitempty"`
	GradeName        *string `json:"grade_name,omitempty"`
	EmploymentStatus *string `json:"employment_status,omitempty"`
	ManagerID        *string `json:"manager_id,omitempty"`
	ManagerName      *string `json:"manager_name,omitempty"`

	IsActive bool `json:"is_active"`
}

type EmployeeOptionResponse struct {
	ID             string `json:"id"`
	EmployeeNumber string `json:"employee_number"`
	FullName       string `json:"full_name"`
}

const dateLayout = "2006-01-02"

func toEmployeeResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:             e.ID.String(),
		UserID:         e.UserID.String(),
		EmployeeNumber: e.EmployeeNumber,
		NIK:            e.NIK,
		Gender:         e.Gender,
		Address:        e.Address,
		JoinDate:       e.JoinDate.Format(dateLayout),
		IsActive:       e.IsActive,
	}

	if e.BirthDate != nil {
		v := e.BirthDate.Format(dateLayout)
		resp.BirthDate = &v
	}
	if e.ResignDate != nil {
		v := e.ResignDate.Format(dateLayout)
		resp.ResignDate = &v
	}
	if e.User != nil {
		resp.FullName = e.User.FullName
		resp.Email = e.User.Email
		resp.Phone = e.User.Phone
	}
	if e.Department != nil {
		id, name := e.Department.ID.String(), e.Department.Name
		resp.DepartmentID, resp.DepartmentName = &id, &name
	}
	if e.Position != nil {
		id, name := e.Position.ID.String(), e.Position.Name
		resp.PositionID, resp.PositionName = &id, &name
	}
	if e.Grade != nil {
		id, name := e.Grade.ID.String(), e.Grade.Name
		resp.GradeID, resp.GradeName = &id, &name
	}
	if e.EmploymentStatus != nil {
		name := e.EmploymentStatus.Name
		resp.EmploymentStatus = &name
	}
	if e.Manager != nil {
		id := e.Manager.ID.String()
		resp.ManagerID = &id
		if e.Manager.User != nil {
			name := e.Manager.User.FullName
			resp.ManagerName = &name
		}
	}

	return resp
}

func toOptionResponse(o EmployeeOption) EmployeeOptionResponse {
	return EmployeeOptionResponse{
		ID:             o.ID.String(),
		EmployeeNumber: o.EmployeeNumber,
		FullName:       o.FullName,
	}
}
