package webscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/su1ph3r/effodio/pkg/types"
)

func TestFindCallSites(t *testing.T) {
	text := `
fetch("/api/profile", { method: "PATCH", headers: { Authorization: "Bearer x" }, body: new FormData(form) });
axios.post('/api/comments', { text: body }, { headers: { 'X-CSRF-Token': 'abc' } });
axios({ method: 'delete', url: '/api/comments/9' });
$.post("/api/vote", $.param(data));
$.get("/api/feed");
req.open('GET', '/api/poll?since=1');
const BASE_URL = 'https://api.example.com/v2';
fetch(endpoint);
`
	sites := FindCallSites(text)
	require.Len(t, sites, 7)

	expected := []struct {
		kind   string
		url    string
		method types.Method
		body   string
	}{
		{CallFetch, "/api/profile", types.MethodPATCH, "multipart"},
		{CallAxios, "/api/comments", types.MethodPOST, "json"},
		{CallAxios, "/api/comments/9", types.MethodDELETE, ""},
		{CallJQuery, "/api/vote", types.MethodPOST, "form"},
		{CallJQuery, "/api/feed", types.MethodGET, ""},
		{CallXHR, "/api/poll?since=1", types.MethodGET, ""},
		{CallBaseURL, "https://api.example.com/v2", types.MethodUnknown, ""},
	}
	for i, e := range expected {
		assert.Equal(t, e.kind, sites[i].Kind, "site %d kind", i)
		assert.Equal(t, e.url, sites[i].URL, "site %d url", i)
		assert.Equal(t, e.method, sites[i].Method, "site %d method", i)
		assert.Equal(t, e.body, sites[i].BodyType, "site %d body type", i)
	}
	assert.Equal(t, "Bearer x", sites[0].Headers["Authorization"])
	assert.Equal(t, "abc", sites[1].Headers["X-CSRF-Token"])

	for i := 1; i < len(sites); i++ {
		assert.LessOrEqual(t, sites[i-1].Start, sites[i].Start, "sites ordered by offset")
	}
}

func TestCallSite_Covers(t *testing.T) {
	text := `fetch("/api/a", {method: "POST"}); x = "/api/b";`
	sites := FindCallSites(text)
	require.Len(t, sites, 1)
	assert.True(t, sites[0].Covers(6))
	assert.False(t, sites[0].Covers(len(text)-8))
}

func TestBalanced(t *testing.T) {
	text := `f("a)", {b: [1, (2)]}, ` + "`${x}`" + `) + rest`
	inner, end := balanced(text, 1)
	assert.Equal(t, `"a)", {b: [1, (2)]}, `+"`${x}`", inner)
	assert.Equal(t, " + rest", text[end:])

	inner, end = balanced("g(unterminated", 1)
	assert.Equal(t, "unterminated", inner)
	assert.Equal(t, len("g(unterminated"), end)
}

func TestSplitArgs(t *testing.T) {
	args := splitArgs(`"/api/x, y", {a: 1, b: [2, 3]}, fn(4, 5)`)
	assert.Equal(t, []string{`"/api/x, y"`, `{a: 1, b: [2, 3]}`, `fn(4, 5)`}, args)
	assert.Empty(t, splitArgs("  "))
}

func TestStringLiteral(t *testing.T) {
	tests := []struct {
		expr string
		lit  string
		ok   bool
	}{
		{`"/api/users"`, "/api/users", true},
		{`'/api/users/' + id`, "/api/users/", true},
		{"`/api/users/${user.id}/posts`", "/api/users/:param/posts", true},
		{"`/api/${a}/${b}`", "/api/:param/:param", true},
		{`endpoint`, "", false},
		{`"unterminated`, "", false},
	}
	for _, tt := range tests {
		lit, ok := stringLiteral(tt.expr)
		assert.Equal(t, tt.ok, ok, "stringLiteral(%q)", tt.expr)
		assert.Equal(t, tt.lit, lit, "stringLiteral(%q)", tt.expr)
	}
}

func TestFindDataOperations(t *testing.T) {
	text := `
const users = await User.findAll({ where: { active: true } });
const o = Object.create(null);
await db.collection("orders").insertMany(batch);
await knex('invoices').del();
conn.execute('UPDATE profiles SET name = ? WHERE id = ?', [n, id]);
`
	ops := FindDataOperations(text, "app.js")
	require.Len(t, ops, 4)

	assert.Equal(t, "User", ops[0].Target)
	assert.Equal(t, types.OpRead, ops[0].Operation)
	assert.Equal(t, "orders", ops[1].Target)
	assert.Equal(t, types.OpBulk, ops[1].Operation)
	assert.Equal(t, "invoices", ops[2].Target)
	assert.Equal(t, types.OpDelete, ops[2].Operation)
	assert.Equal(t, types.DataOpSQL, ops[3].Kind)
	assert.Equal(t, "profiles", ops[3].Target)
	assert.Equal(t, types.OpUpdate, ops[3].Operation)

	for _, op := range ops {
		assert.Equal(t, "app.js", op.Source)
		assert.NotEmpty(t, op.Snippet)
		assert.LessOrEqual(t, len([]rune(op.Snippet)), snippetLength)
	}
}
