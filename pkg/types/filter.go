package types

// Filter - параметры списка после разбора query: поиск, сортировка, фильтры и страница.
type Filter struct {
	Search    string            `json:"keyword,omitempty"`
	SortBy    string            `json:"sortBy,omitempty"`
	SortOrder string            `json:"sortOrder,omitempty"`
	Filter    map[string]string `json:"filter,omitempty"`
	Page      int               `json:"page"`
	PageSize  int               `json:"pageSize"`
}

func (f Filter) Offset() uint64 {
	if f.Page < 1 {
		return 0
	}
	return uint64((f.Page - 1) * f.PageSize)
}

func (f Filter) Limit() uint64 {
	return uint64(f.PageSize)
}

// Get возвращает значение фильтра и признак его наличия.
func (f Filter) Get(key string) (string, bool) {
	v, ok := f.Filter[key]
	return v, ok && v != ""
}
