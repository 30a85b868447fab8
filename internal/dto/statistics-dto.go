package dto

// StatsQueryDTO - параметры отчётов из query string.
type StatsQueryDTO struct {
	UserID       uint64 `json:"-" param:"userId"`
	Year         int    `json:"year" query:"year" validate:"omitempty,publish_year"`
	DepartmentID uint64 `json:"department_id" query:"department_id"`
	StartDate    string `json:"startDate" query:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string `json:"endDate" query:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Dimension    string `json:"dimension" query:"dimension" validate:"omitempty,oneof=day month year"`
	Type         string `json:"type" query:"type"`
	Limit        int    `json:"limit" query:"limit" validate:"omitempty,min=1,max=100"`
	Format       string `json:"format" query:"format" validate:"omitempty,oneof=json csv xlsx"`
}

// ExportFile - готовый к отдаче файл выгрузки.
type ExportFile struct {
	FileName    string
	ContentType string
	Content     []byte
}
