package types

import (
	"time"

	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/samber/lo"
)

const (
	FilterDefaultLimit = 20
	FilterMaxLimit     = 1000
)

// SortOrder is the direction of a sort condition.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// QueryFilter contains pagination and basic query parameters shared by
// all list endpoints.
type QueryFilter struct {
	Limit  *int       `json:"limit,omitempty" form:"limit"`
	Offset *int       `json:"offset,omitempty" form:"offset"`
	Status *Status    `json:"status,omitempty" form:"status"`
	Sort   *string    `json:"sort,omitempty" form:"sort"`
	Order  *SortOrder `json:"order,omitempty" form:"order"`
}

// NewDefaultQueryFilter returns a filter with the default page size.
func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Limit:  lo.ToPtr(FilterDefaultLimit),
		Offset: lo.ToPtr(0),
		Order:  lo.ToPtr(OrderDesc),
	}
}

// NewNoLimitQueryFilter returns a filter that fetches everything.
func NewNoLimitQueryFilter() *QueryFilter {
	return &QueryFilter{
		Offset: lo.ToPtr(0),
		Order:  lo.ToPtr(OrderDesc),
	}
}

func (f *QueryFilter) GetLimit() int {
	if f == nil || f.Limit == nil {
		return FilterDefaultLimit
	}
	return *f.Limit
}

func (f *QueryFilter) GetOffset() int {
	if f == nil || f.Offset == nil {
		return 0
	}
	return *f.Offset
}

func (f *QueryFilter) GetSort() string {
	if f == nil || f.Sort == nil {
		return "created_at"
	}
	return *f.Sort
}

func (f *QueryFilter) GetOrder() SortOrder {
	if f == nil || f.Order == nil {
		return OrderDesc
	}
	return *f.Order
}

func (f *QueryFilter) GetStatus() Status {
	if f == nil || f.Status == nil {
		return ""
	}
	return *f.Status
}

// IsUnlimited reports whether the filter fetches all rows.
func (f *QueryFilter) IsUnlimited() bool {
	return f != nil && f.Limit == nil
}

func (f *QueryFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Limit != nil && (*f.Limit < 1 || *f.Limit > FilterMaxLimit) {
		return ierr.NewError("invalid limit").
			WithHintf("Limit must be between 1 and %d", FilterMaxLimit).
			Mark(ierr.ErrValidation)
	}
	if f.Offset != nil && *f.Offset < 0 {
		return ierr.NewError("invalid offset").
			WithHint("Offset must not be negative").
			Mark(ierr.ErrValidation)
	}
	if f.Order != nil && *f.Order != OrderAsc && *f.Order != OrderDesc {
		return ierr.NewError("invalid order").
			WithHint("Order must be asc or desc").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TimeRangeFilter restricts results by creation time.
type TimeRangeFilter struct {
	StartTime *time.Time `json:"start_time,omitempty" form:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty" form:"end_time"`
}

func (f *TimeRangeFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.StartTime != nil && f.EndTime != nil && f.EndTime.Before(*f.StartTime) {
		return ierr.NewError("invalid time range").
			WithHint("End time must not be before start time").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// FilterOperator enumerates supported comparison operators.
type FilterOperator string

const (
	EQUAL    FilterOperator = "eq"
	CONTAINS FilterOperator = "contains"
	IN       FilterOperator = "in"
	GT       FilterOperator = "gt"
	LT       FilterOperator = "lt"
)

// DataType enumerates filter value types.
type DataType string

const (
	DataTypeString  DataType = "string"
	DataTypeNumber  DataType = "number"
	DataTypeBoolean DataType = "boolean"
	DataTypeDate    DataType = "date"
	DataTypeArray   DataType = "array"
)

// Value is a tagged union for filter condition values.
type Value struct {
	String  *string    `json:"string,omitempty"`
	Number  *float64   `json:"number,omitempty"`
	Boolean *bool      `json:"boolean,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
	Array   []string   `json:"array,omitempty"`
}

// FilterCondition is a single field comparison.
type FilterCondition struct {
	Field    *string         `json:"field,omitempty"`
	Operator *FilterOperator `json:"operator,omitempty"`
	DataType *DataType       `json:"data_type,omitempty"`
	Value    *Value          `json:"value,omitempty"`
}

// SortCondition specifies result ordering.
type SortCondition struct {
	Field *string    `json:"field,omitempty"`
	Order *SortOrder `json:"order,omitempty"`
}
