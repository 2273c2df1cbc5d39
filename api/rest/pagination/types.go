package pagination

import (
	"github.com/gin-gonic/gin"
)

// limit and offset after defaults and caps are applied
type Params struct {
	Limit  int
	Offset int
}

// page metadata returned next to a list
type Meta struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// raw ?limit=&offset= query values
type Query struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

func NewMeta(params Params, total int) Meta {
	return Meta{
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasMore: params.Offset+params.Limit < total,
	}
}

// clamps limit to (0, maxLimit], falling back to defaultLimit, and offset to >= 0
func DefaultParams(limit, offset, defaultLimit, maxLimit int) Params {
	if limit <= 0 {
		limit = defaultLimit
	}

	return Params{
		Limit:  min(limit, maxLimit),
		Offset: max(offset, 0),
	}
}

// reads limit and offset from the query string
func FromQuery(c *gin.Context, defaultLimit, maxLimit int) (Params, error) {
	var q Query
	if err := c.ShouldBindQuery(&q); err != nil {
		return Params{}, err
	}

	return DefaultParams(q.Limit, q.Offset, defaultLimit, maxLimit), nil
}
