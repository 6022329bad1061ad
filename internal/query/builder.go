package query

import (
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Reserved parameter names consumed by the builder stages themselves.
// They never become filter conditions.
var reservedParams = map[string]struct{}{
	"page":   {},
	"sort":   {},
	"limit":  {},
	"fields": {},
	"search": {},
}

const (
	defaultPage  = int64(1)
	defaultLimit = int64(100)
)

var comparisonOps = map[string]string{
	"gte": "$gte",
	"gt":  "$gt",
	"lte": "$lte",
	"lt":  "$lt",
}

// Builder translates flat request parameters into a mongo filter and find
// options for one collection. Filterable fields are allow-listed so client
// supplied keys can never smuggle arbitrary operators into the query.
type Builder struct {
	allowedFields map[string]struct{}
	searchFields  []string
}

// NewBuilder configures a builder with the fields clients may filter on
// and the fields a free-text search spans.
func NewBuilder(allowedFields, searchFields []string) *Builder {
	allowed := make(map[string]struct{}, len(allowedFields))
	for _, f := range allowedFields {
		allowed[f] = struct{}{}
	}
	return &Builder{allowedFields: allowed, searchFields: searchFields}
}

// Query is the refined, not-yet-executed query: a bson filter plus the
// sort/projection/pagination options to run it with.
type Query struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.M
	Page       int64
	Limit      int64
}

// Skip returns the document offset implied by page and limit.
func (q *Query) Skip() int64 {
	return (q.Page - 1) * q.Limit
}

// FindOptions materializes the sort, projection and pagination stages.
func (q *Query) FindOptions() *options.FindOptions {
	return options.Find().
		SetSort(q.Sort).
		SetProjection(q.Projection).
		SetSkip(q.Skip()).
		SetLimit(q.Limit)
}

// And narrows the filter with an extra condition, preserving whatever the
// client-supplied stages produced.
func (q *Query) And(cond bson.M) *Query {
	if len(q.Filter) == 0 {
		q.Filter = cond
		return q
	}
	if and, ok := q.Filter["$and"].(bson.A); ok {
		q.Filter["$and"] = append(and, cond)
		return q
	}
	q.Filter = bson.M{"$and": bson.A{q.Filter, cond}}
	return q
}

// Build applies the four stages in fixed order: filter (with search),
// sort, field selection, pagination. Absent parameters never error; every
// stage has a default.
func (b *Builder) Build(params url.Values) *Query {
	return &Query{
		Filter:     b.buildFilter(params),
		Sort:       buildSort(params.Get("sort")),
		Projection: buildProjection(params.Get("fields")),
		Page:       numericOrDefault(params.Get("page"), defaultPage),
		Limit:      numericOrDefault(params.Get("limit"), defaultLimit),
	}
}

func (b *Builder) buildFilter(params url.Values) bson.M {
	conditions := bson.A{}

	for key, values := range params {
		if len(values) == 0 {
			continue
		}
		value := values[0]

		field, op := splitOperator(key)
		if _, reserved := reservedParams[field]; reserved {
			continue
		}
		if _, ok := b.allowedFields[field]; !ok {
			continue
		}

		if op != "" {
			number, err := strconv.ParseFloat(value, 64)
			if err != nil {
				continue
			}
			conditions = append(conditions, bson.M{field: bson.M{op: number}})
			continue
		}

		if number, err := strconv.ParseFloat(value, 64); err == nil {
			conditions = append(conditions, bson.M{field: number})
			continue
		}

		if value == "true" || value == "false" {
			conditions = append(conditions, bson.M{field: value == "true"})
			continue
		}

		conditions = append(conditions, bson.M{
			field: bson.M{"$regex": value, "$options": "i"},
		})
	}

	if keyword := strings.TrimSpace(params.Get("search")); keyword != "" && len(b.searchFields) > 0 {
		or := bson.A{}
		for _, f := range b.searchFields {
			or = append(or, bson.M{f: bson.M{"$regex": keyword, "$options": "i"}})
		}
		conditions = append(conditions, bson.M{"$or": or})
	}

	if len(conditions) == 0 {
		return bson.M{}
	}
	return bson.M{"$and": conditions}
}

// splitOperator decodes the price[gte]=10 parameter form into field and
// mongo operator. Unknown suffixes leave the key untouched so the
// allow-list check drops them.
func splitOperator(key string) (field, op string) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, ""
	}
	suffix := key[open+1 : len(key)-1]
	mongoOp, ok := comparisonOps[suffix]
	if !ok {
		return key, ""
	}
	return key[:open], mongoOp
}

func buildSort(raw string) bson.D {
	sort := bson.D{}
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if strings.HasPrefix(token, "-") {
			if field := token[1:]; field != "" {
				sort = append(sort, bson.E{Key: field, Value: -1})
			}
			continue
		}
		sort = append(sort, bson.E{Key: token, Value: 1})
	}

	if len(sort) == 0 {
		return bson.D{{Key: "createdAt", Value: -1}}
	}
	return sort
}

func buildProjection(raw string) bson.M {
	projection := bson.M{}
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		projection[token] = 1
	}

	// Documents migrated from the old system still carry a __v version
	// field; hide it unless the client asked for specific fields.
	if len(projection) == 0 {
		return bson.M{"__v": 0}
	}
	return projection
}

// numericOrDefault mirrors the lenient pagination contract: anything that
// is not a positive integer silently becomes the default.
func numericOrDefault(raw string, fallback int64) int64 {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
