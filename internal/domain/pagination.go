package domain

// Pagination selects a 1-based page of a listing
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Offset returns the number of records preceding the page
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageMeta describes a returned page
type PageMeta struct {
	Page     int `json:"page"`
	Limit    int `json:"limit"`
	LastPage int `json:"lastPage"`
	Total    int `json:"total"`
}

// ProductPage is the result of listing products
type ProductPage struct {
	Data []*Product `json:"data"`
	Meta PageMeta   `json:"meta"`
}

// LastPage returns ceil(total/limit); zero when there is nothing to list
func LastPage(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
