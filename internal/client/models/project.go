package models

type Project struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	CreatedAt LocalDateTime `json:"createdAt"`
	UpdatedAt LocalDateTime `json:"updatedAt"`
}

type ProjectCreateRequest struct {
	Name string `json:"name" validate:"notblank,max=100"`
}
