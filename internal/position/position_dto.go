package position

type CreatePositionRequest struct {
	Name         string  `json:"name" binding:"required,max=100"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
	Description  *string `json:"description"`
}

type UpdatePositionRequest struct {
	Name         string  `json:"name" binding:"required,max=100"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
	Description  *string `json:"description"`
}

type PositionResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	DepartmentID *string `json:"department_id,omitempty"`
	Description  *string `json:"description,omitempty"`
}

func mapToResponse(p Position) PositionResponse {
	resp := PositionResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
	}
	if p.DepartmentID != nil {
		v := p.DepartmentID.String()
		resp.DepartmentID = &v
	}
	return resp
}
