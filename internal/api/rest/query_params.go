package rest

import (
	"github.com/gin-gonic/gin"
)

const MAX_PAGE_SIZE = 100

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

func (o Order) Desc() bool {
	return o == OrderDesc
}

func (o Order) Asc() bool {
	return o == OrderAsc
}

// sortColumns are the accepted sort_by values for resource list endpoints
var sortColumns = map[string]bool{
	"token_id":  true,
	"minted_at": true,
	"title":     true,
}

// ListResourcesQueryParams holds query parameters for GET /resources and its
// owner and market variants
type ListResourcesQueryParams struct {
	// Filters
	ResourceType string `form:"resource_type"`

	// Pagination
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`

	// Sorting
	SortBy    string `form:"sort_by,default=token_id"`
	SortOrder Order  `form:"sort_order,default=asc"`
}

// ParseListResourcesQuery parses query parameters for resource list endpoints
func ParseListResourcesQuery(c *gin.Context) (*ListResourcesQueryParams, error) {
	var params ListResourcesQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	// Cap limits
	if params.Limit > MAX_PAGE_SIZE {
		params.Limit = MAX_PAGE_SIZE
	}
	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	// Validate sort
	if !sortColumns[params.SortBy] {
		params.SortBy = "token_id"
	}
	if !params.SortOrder.Asc() && !params.SortOrder.Desc() {
		params.SortOrder = OrderAsc
	}

	return &params, nil
}

// AccessCheckQueryParams holds query parameters for GET /access/check
type AccessCheckQueryParams struct {
	ResourceID uint64 `form:"resource_id"`
	Address    string `form:"address"`
}

// ParseAccessCheckQuery parses query parameters for GET /access/check
func ParseAccessCheckQuery(c *gin.Context) (*AccessCheckQueryParams, error) {
	var params AccessCheckQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}
	return &params, nil
}
