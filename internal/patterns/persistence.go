package patterns

import "github.com/su1ph3r/effodio/pkg/types"

// PersistenceRules map verb-shaped path segments, query-parameter values and
// raw SQL to a persistence operation. Evaluated over lowercase(url)+context in
// declared order; first match wins.
var PersistenceRules = []RuleSet[types.PersistenceOp]{
	{Effect: types.OpInsert, Rules: []*Rule{
		NewRule("insert-path", `(?i)/(?:create|add|insert|new|register|signup|submit)(?:[/_?.&#"'\s-]|$)`, 0),
		NewRule("insert-param", `(?i)[?&](?:action|op|cmd|method|operation|mode)=(?:create|add|insert|new)\b`, 0),
		NewRule("insert-sql", `(?i)\binsert\s+into\b`, 0),
	}},
	{Effect: types.OpUpdate, Rules: []*Rule{
		NewRule("update-path", `(?i)/(?:update|edit|modify|change|patch)(?:[/_?.&#"'\s-]|$)`, 0),
		NewRule("update-param", `(?i)[?&](?:action|op|cmd|method|operation|mode)=(?:update|edit|modify)\b`, 0),
		NewRule("update-sql", `(?i)\bupdate\s+[\w."` + "`" + `\[\]]+\s+set\b`, 0),
	}},
	{Effect: types.OpDelete, Rules: []*Rule{
		NewRule("delete-path", `(?i)/(?:delete|remove|destroy|del|purge)(?:[/_?.&#"'\s-]|$)`, 0),
		NewRule("delete-param", `(?i)[?&](?:action|op|cmd|method|operation|mode)=(?:delete|remove|destroy)\b`, 0),
		NewRule("delete-sql", `(?i)\bdelete\s+from\b`, 0),
	}},
	{Effect: types.OpUpsert, Rules: []*Rule{
		NewRule("upsert-path", `(?i)/(?:upsert|sync|merge|save|createorupdate|save_or_update)(?:[/_?.&#"'\s-]|$)`, 0),
		NewRule("upsert-param", `(?i)[?&](?:action|op|cmd|method|operation|mode)=(?:upsert|sync|merge|save)\b`, 0),
		NewRule("upsert-sql", `(?i)\bon\s+conflict\b|\binsert\s+or\s+replace\b|\bon\s+duplicate\s+key\b|\bmerge\s+into\b|\breplace\s+into\b`, 0),
	}},
	{Effect: types.OpBulk, Rules: []*Rule{
		NewRule("bulk-path", `(?i)/(?:bulk|batch|import|multi)(?:[/_?.&#"'\s-]|$)`, 0),
		NewRule("bulk-param", `(?i)[?&](?:action|op|cmd|method|operation|mode)=(?:bulk|batch|import)\b`, 0),
		NewRule("bulk-call", `(?i)\b(?:insertmany|updatemany|deletemany|bulkwrite|bulkcreate|bulkinsert|batchupdate|executebatch|addbatch)\b`, 0),
	}},
	{Effect: types.OpRead, Rules: []*Rule{
		NewRule("read-path", `(?i)/(?:get|list|fetch|search|find|query|read|view|show|details?)(?:[/_?.&#"'\s-]|$)`, 0),
		NewRule("read-param", `(?i)[?&](?:action|op|cmd|method|operation|mode)=(?:get|list|read|view|search|fetch)\b`, 0),
		NewRule("read-sql", `(?i)\bselect\s+[\w*.,\s"` + "`" + `]+?\s+from\b`, 0),
		NewRule("read-resource-id", `(?i)/[a-z][a-z0-9_-]*/(?:\d+|[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})(?:[/?#"'\s]|$)`, 0),
	}},
}

// MethodDefaultOps is the fallback when no persistence rule matched
var MethodDefaultOps = map[types.Method]types.PersistenceOp{
	types.MethodPOST:   types.OpInsert,
	types.MethodPUT:    types.OpUpdate,
	types.MethodPATCH:  types.OpUpdate,
	types.MethodDELETE: types.OpDelete,
	types.MethodGET:    types.OpRead,
}
