package sqlref

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reactive-notebook/nbcore/api"
)

func TestExtractCreated_SimpleTable(t *testing.T) {
	created := ExtractCreated("CREATE TABLE orders AS SELECT * FROM raw_events")
	if assert.Len(t, created, 1) {
		assert.Equal(t, "orders", created[0].Name)
		assert.Equal(t, "", created[0].Qualified)
		assert.Equal(t, api.KindTable, created[0].Kind)
	}
}

func TestExtractCreated_QualifiedNameAndIfNotExists(t *testing.T) {
	created := ExtractCreated("CREATE TABLE IF NOT EXISTS analytics.events (id INT)")
	if assert.Len(t, created, 1) {
		assert.Equal(t, "events", created[0].Name)
		assert.Equal(t, "analytics.events", created[0].Qualified)
	}
}

func TestExtractCreated_ViewAndSchema(t *testing.T) {
	created := ExtractCreated("CREATE OR REPLACE VIEW v AS SELECT 1; CREATE SCHEMA IF NOT EXISTS s")
	kinds := map[string]api.VariableKind{}
	for _, c := range created {
		kinds[c.Name] = c.Kind
	}
	assert.Equal(t, api.KindView, kinds["v"])
	assert.Equal(t, api.KindSchema, kinds["s"])
}

func TestExtractReferences_FromAndJoin(t *testing.T) {
	refs := ExtractReferences("SELECT a.x FROM users a JOIN orders o ON a.id = o.user_id")
	assert.Contains(t, refs, "users")
	assert.Contains(t, refs, "orders")
}

func TestExtractReferences_DottedName(t *testing.T) {
	refs := ExtractReferences("SELECT * FROM catalog.schema.table")
	assert.Contains(t, refs, "catalog.schema.table")
}

func TestSQLRef_HierarchicalMatchLength1(t *testing.T) {
	ref := api.ParseSQLRef("t")
	assert.True(t, ref.MatchesHierarchicalRef("t", "", api.KindTable))
	assert.True(t, ref.MatchesHierarchicalRef("t", "", api.KindSchema))
}

func TestSQLRef_HierarchicalMatchLength2(t *testing.T) {
	ref := api.ParseSQLRef("s.t")
	assert.True(t, ref.MatchesHierarchicalRef("t", "", api.KindTable))
	assert.True(t, ref.MatchesHierarchicalRef("s", "", api.KindSchema))
	assert.False(t, ref.MatchesHierarchicalRef("t", "", api.KindSchema))
}

func TestSQLRef_HierarchicalMatchRespectsOtherQualifiedName(t *testing.T) {
	ref := api.ParseSQLRef("s.t")
	assert.False(t, ref.MatchesHierarchicalRef("t", "s2.t", api.KindTable))
	assert.True(t, ref.MatchesHierarchicalRef("t", "s.t", api.KindTable))
}

func TestSQLRef_ContainsHierarchicalRef(t *testing.T) {
	ref := api.ParseSQLRef("catalog.schema.table")
	assert.True(t, ref.ContainsHierarchicalRef("catalog", api.KindCatalog))
	assert.True(t, ref.ContainsHierarchicalRef("schema", api.KindSchema))
	assert.True(t, ref.ContainsHierarchicalRef("table", api.KindTable))
	assert.False(t, ref.ContainsHierarchicalRef("catalog", api.KindSchema))
}
