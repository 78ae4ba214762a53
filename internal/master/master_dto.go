package master

type GradeRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Level int    `json:"level" binding:"required,min=1"`
}

type GradeResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

type EmploymentStatusRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Code string `json:"code" binding:"required,max=30"`
}

type EmploymentStatusResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

func mapGrade(g Grade) GradeResponse {
	return GradeResponse{ID: g.ID.String(), Name: g.Name, Level: g.Level}
}

func mapEmploymentStatus(e EmploymentStatus) EmploymentStatusResponse {
	return EmploymentStatusResponse{ID: e.ID.String(), Name: e.Name, Code: e.Code}
}
