package repository

// MinPriceField filters rows with price strictly greater than the value.
const MinPriceField QueryField = "min_price"

type Query struct {
	Values map[QueryField]string
}

type QueryField string

func NewQuery() *Query {
	return &Query{
		Values: map[QueryField]string{},
	}
}

func (q *Query) With(field QueryField, val string) *Query {
	q.Values[field] = val
	return q
}
