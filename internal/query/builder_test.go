package query

import (
	"net/url"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

var testBuilder = NewBuilder(
	[]string{"name", "brand", "tags", "rated", "isPaid"},
	[]string{"name", "brand", "tags"},
)

func filterConditions(t *testing.T, filter bson.M) bson.A {
	t.Helper()
	conditions, ok := filter["$and"].(bson.A)
	if !ok {
		t.Fatalf("expected $and filter, got %v", filter)
	}
	return conditions
}

func TestBuildFilterCombinesConditionsWithAnd(t *testing.T) {
	params := url.Values{}
	params.Set("name", "arabica")
	params.Set("rated[gte]", "4")

	q := testBuilder.Build(params)
	conditions := filterConditions(t, q.Filter)
	if len(conditions) != 2 {
		t.Fatalf("expected 2 conditions, got %d: %v", len(conditions), conditions)
	}

	found := map[string]bool{}
	for _, raw := range conditions {
		cond := raw.(bson.M)
		if name, ok := cond["name"].(bson.M); ok {
			if name["$regex"] != "arabica" || name["$options"] != "i" {
				t.Fatalf("expected case-insensitive regex for name, got %v", name)
			}
			found["name"] = true
		}
		if rated, ok := cond["rated"].(bson.M); ok {
			if rated["$gte"] != 4.0 {
				t.Fatalf("expected rated $gte 4, got %v", rated)
			}
			found["rated"] = true
		}
	}
	if !found["name"] || !found["rated"] {
		t.Fatalf("missing expected conditions: %v", conditions)
	}
}

func TestBuildFilterStripsReservedAndUnknownKeys(t *testing.T) {
	params := url.Values{}
	params.Set("page", "2")
	params.Set("sort", "name")
	params.Set("limit", "10")
	params.Set("fields", "name")
	params.Set("passwordHash[gte]", "0")
	params.Set("$where", "sleep(1000)")

	q := testBuilder.Build(params)
	if len(q.Filter) != 0 {
		t.Fatalf("expected empty filter, got %v", q.Filter)
	}
}

func TestBuildFilterNumericAndBooleanEquality(t *testing.T) {
	params := url.Values{}
	params.Set("rated", "5")
	params.Set("isPaid", "true")

	q := testBuilder.Build(params)
	conditions := filterConditions(t, q.Filter)

	found := map[string]bool{}
	for _, raw := range conditions {
		cond := raw.(bson.M)
		if v, ok := cond["rated"]; ok {
			if v != 5.0 {
				t.Fatalf("expected numeric equality 5, got %v", v)
			}
			found["rated"] = true
		}
		if v, ok := cond["isPaid"]; ok {
			if v != true {
				t.Fatalf("expected boolean equality true, got %v", v)
			}
			found["isPaid"] = true
		}
	}
	if !found["rated"] || !found["isPaid"] {
		t.Fatalf("missing expected conditions: %v", conditions)
	}
}

func TestBuildFilterDropsNonNumericComparison(t *testing.T) {
	params := url.Values{}
	params.Set("rated[gte]", "not-a-number")

	q := testBuilder.Build(params)
	if len(q.Filter) != 0 {
		t.Fatalf("expected comparison with bad value to be dropped, got %v", q.Filter)
	}
}

func TestBuildFilterSearchSpansConfiguredFields(t *testing.T) {
	params := url.Values{}
	params.Set("search", "java")

	q := testBuilder.Build(params)
	conditions := filterConditions(t, q.Filter)
	if len(conditions) != 1 {
		t.Fatalf("expected single search condition, got %v", conditions)
	}

	or, ok := conditions[0].(bson.M)["$or"].(bson.A)
	if !ok {
		t.Fatalf("expected $or search condition, got %v", conditions[0])
	}
	if len(or) != 3 {
		t.Fatalf("expected search over 3 fields, got %d", len(or))
	}
	for _, raw := range or {
		for field, value := range raw.(bson.M) {
			clause := value.(bson.M)
			if clause["$regex"] != "java" || clause["$options"] != "i" {
				t.Fatalf("expected case-insensitive regex on %s, got %v", field, clause)
			}
		}
	}
}

func TestBuildSortDefaultsToNewestFirst(t *testing.T) {
	q := testBuilder.Build(url.Values{})
	want := bson.D{{Key: "createdAt", Value: -1}}
	if len(q.Sort) != 1 || q.Sort[0] != want[0] {
		t.Fatalf("expected default sort %v, got %v", want, q.Sort)
	}
}

func TestBuildSortHonorsCommaListAndDirection(t *testing.T) {
	params := url.Values{}
	params.Set("sort", "-rated,name")

	q := testBuilder.Build(params)
	if len(q.Sort) != 2 {
		t.Fatalf("expected 2 sort fields, got %v", q.Sort)
	}
	if q.Sort[0].Key != "rated" || q.Sort[0].Value != -1 {
		t.Fatalf("expected rated descending first, got %v", q.Sort[0])
	}
	if q.Sort[1].Key != "name" || q.Sort[1].Value != 1 {
		t.Fatalf("expected name ascending second, got %v", q.Sort[1])
	}
}

func TestBuildProjectionDefaultsToHidingVersionField(t *testing.T) {
	q := testBuilder.Build(url.Values{})
	if len(q.Projection) != 1 || q.Projection["__v"] != 0 {
		t.Fatalf("expected default projection to exclude __v, got %v", q.Projection)
	}
}

func TestBuildProjectionInclusionList(t *testing.T) {
	params := url.Values{}
	params.Set("fields", "name, brand")

	q := testBuilder.Build(params)
	if len(q.Projection) != 2 || q.Projection["name"] != 1 || q.Projection["brand"] != 1 {
		t.Fatalf("expected inclusion projection for name and brand, got %v", q.Projection)
	}
}

func TestPaginationDefaults(t *testing.T) {
	q := testBuilder.Build(url.Values{})
	if q.Page != 1 || q.Limit != 100 || q.Skip() != 0 {
		t.Fatalf("expected page=1 limit=100 skip=0, got page=%d limit=%d skip=%d",
			q.Page, q.Limit, q.Skip())
	}
}

func TestPaginationCoercesBadInputToDefaults(t *testing.T) {
	params := url.Values{}
	params.Set("page", "abc")
	params.Set("limit", "-5")

	q := testBuilder.Build(params)
	if q.Page != 1 || q.Limit != 100 {
		t.Fatalf("expected defaults for bad input, got page=%d limit=%d", q.Page, q.Limit)
	}
}

func TestPaginationComputesSkip(t *testing.T) {
	params := url.Values{}
	params.Set("page", "3")
	params.Set("limit", "20")

	q := testBuilder.Build(params)
	if q.Skip() != 40 {
		t.Fatalf("expected skip 40, got %d", q.Skip())
	}
}

func TestAndPreservesClientConditions(t *testing.T) {
	params := url.Values{}
	params.Set("name", "arabica")

	q := testBuilder.Build(params).And(bson.M{"user": "abc"})
	conditions := filterConditions(t, q.Filter)
	if len(conditions) != 2 {
		t.Fatalf("expected client condition plus scope, got %v", conditions)
	}
}

func TestAndOnEmptyFilter(t *testing.T) {
	q := testBuilder.Build(url.Values{}).And(bson.M{"user": "abc"})
	if q.Filter["user"] != "abc" {
		t.Fatalf("expected scope condition on empty filter, got %v", q.Filter)
	}
}
