package classifier

import (
	"strings"
	"testing"

	"github.com/su1ph3r/effodio/pkg/types"
)

func TestClassify_FetchWithJSONBody(t *testing.T) {
	context := `fetch("/api/users/create", {method:"POST", body: JSON.stringify(x)})`
	ep := New().Classify("/api/users/create", context, "assets/app.js")

	if ep.Method != types.MethodPOST {
		t.Errorf("Method = %s, expected POST", ep.Method)
	}
	if ep.PersistenceOp != types.OpInsert {
		t.Errorf("PersistenceOp = %q, expected INSERT", ep.PersistenceOp)
	}
	if !ep.HasPayload {
		t.Error("HasPayload = false, expected true")
	}
	if ep.Confidence != types.ConfidenceHigh {
		t.Errorf("Confidence = %s, expected high", ep.Confidence)
	}
	if ep.SourceLocation != "assets/app.js" {
		t.Errorf("SourceLocation = %q", ep.SourceLocation)
	}
}

func TestClassify_BareResourcePath(t *testing.T) {
	ep := New().Classify("/api/users/42", `"/api/users/42"`, "res/raw/config.txt")

	if ep.Method != types.MethodUnknown {
		t.Errorf("Method = %s, expected UNKNOWN", ep.Method)
	}
	if ep.PersistenceOp != types.OpRead {
		t.Errorf("PersistenceOp = %q, expected READ", ep.PersistenceOp)
	}
	if ep.HasPayload {
		t.Errorf("HasPayload = true, indicators %v", ep.PayloadIndicators)
	}
	if ep.Confidence != types.ConfidenceMedium {
		t.Errorf("Confidence = %s, expected medium", ep.Confidence)
	}
}

func TestClassify_NoCues(t *testing.T) {
	ep := New().Classify("/settings/profile", `"/settings/profile"`, "x.txt")
	if ep.Method != types.MethodUnknown || ep.PersistenceOp != "" || ep.Confidence != types.ConfidenceLow {
		t.Errorf("got %s/%q/%s, expected UNKNOWN/none/low", ep.Method, ep.PersistenceOp, ep.Confidence)
	}
}

func TestDetermineMethod(t *testing.T) {
	tests := []struct {
		context, url string
		expected     types.Method
	}{
		{`@GET("users")`, "users", types.MethodGET},
		{`"/api/orders/delete/3"`, "/api/orders/delete/3", types.MethodDELETE},
		{`req.send(JSON.stringify(order))`, "/api/orders", types.MethodPOST},
		{`"/api/orders"`, "/api/orders", types.MethodUnknown},
		// explicit cue beats the path heuristic
		{`$.ajax({url: "/api/users/delete", type: "POST"})`, "/api/users/delete", types.MethodPOST},
	}
	for _, tt := range tests {
		if got := DetermineMethod(tt.context, tt.url); got != tt.expected {
			t.Errorf("DetermineMethod(%q, %q) = %s, expected %s", tt.context, tt.url, got, tt.expected)
		}
	}
}

func TestPersistenceOp_MethodDefault(t *testing.T) {
	c := New()
	tests := []struct {
		method   types.Method
		expected types.PersistenceOp
	}{
		{types.MethodPOST, types.OpInsert},
		{types.MethodPUT, types.OpUpdate},
		{types.MethodPATCH, types.OpUpdate},
		{types.MethodDELETE, types.OpDelete},
		{types.MethodGET, types.OpRead},
		{types.MethodUnknown, ""},
	}
	for _, tt := range tests {
		if got := c.PersistenceOp(tt.method, "/api/orders", `"/api/orders"`); got != tt.expected {
			t.Errorf("PersistenceOp(%s) = %q, expected %q", tt.method, got, tt.expected)
		}
	}
}

func TestPersistenceOp_IDSegmentUpdate(t *testing.T) {
	web := NewWeb()
	if got := web.PersistenceOp(types.MethodPOST, "/api/orders/17", ""); got != types.OpUpdate {
		t.Errorf("web PersistenceOp(POST, id path) = %q, expected UPDATE", got)
	}
	if got := web.PersistenceOp(types.MethodGET, "/api/orders/17", ""); got != types.OpRead {
		t.Errorf("web PersistenceOp(GET, id path) = %q, expected READ", got)
	}
	if got := New().PersistenceOp(types.MethodPOST, "/api/orders/17", ""); got == types.OpUpdate {
		t.Error("archive classifier should not apply the id-segment rule")
	}
}

func TestScoreConfidence(t *testing.T) {
	methods := []types.Method{types.MethodGET, types.MethodPOST, types.MethodUnknown}
	ops := []types.PersistenceOp{"", types.OpRead, types.OpInsert}

	for _, m := range methods {
		for _, op := range ops {
			for n := 0; n <= 4; n++ {
				got := ScoreConfidence(m, op, n)
				switch got {
				case types.ConfidenceHigh:
					if !((m != types.MethodUnknown && op != "") || n >= 3) {
						t.Errorf("ScoreConfidence(%s, %q, %d) = high without corroboration", m, op, n)
					}
				case types.ConfidenceLow:
					if !(m == types.MethodUnknown && op == "" && n == 0) {
						t.Errorf("ScoreConfidence(%s, %q, %d) = low with cues present", m, op, n)
					}
				case types.ConfidenceMedium:
				default:
					t.Errorf("ScoreConfidence(%s, %q, %d) = %q, unknown tier", m, op, n, got)
				}
			}
		}
	}

	if got := ScoreConfidence(types.MethodUnknown, "", 3); got != types.ConfidenceHigh {
		t.Errorf("three indicators alone should be high, got %s", got)
	}
}

func TestScorePayload_Sorted(t *testing.T) {
	has, indicators := ScorePayload(`{"password": p, "email": e, "created_at": now}`)
	if !has {
		t.Fatal("expected payload")
	}
	expected := []string{"password", "timestamp", "user_data"}
	if len(indicators) != len(expected) {
		t.Fatalf("indicators = %v, expected %v", indicators, expected)
	}
	for i := range expected {
		if indicators[i] != expected[i] {
			t.Errorf("indicators[%d] = %q, expected %q", i, indicators[i], expected[i])
		}
	}
}

func TestExtractUIInfo(t *testing.T) {
	info := ExtractUIInfo(`loginButton.setOnClickListener(v -> api.login()); // text: "Sign in"`)
	if info.Element != UIElementButton {
		t.Errorf("Element = %q, expected Button", info.Element)
	}
	if info.Text != "Sign in" {
		t.Errorf("Text = %q, expected Sign in", info.Text)
	}
	if info.EventType != "Click" {
		t.Errorf("EventType = %q, expected Click", info.EventType)
	}

	info = ExtractUIInfo(`<input name="q" onchange="search(this.value)">`)
	if info.Element != UIElementInput {
		t.Errorf("Element = %q, expected Input Field", info.Element)
	}
	if info.EventType != "Change" {
		t.Errorf("EventType = %q, expected Change", info.EventType)
	}
}

func TestClassifyAs_CallSiteVerb(t *testing.T) {
	c := NewWeb()
	ep := c.ClassifyAs(types.MethodPUT, "/api/orders/17", `axios.put("/api/orders/17", order)`, "app.js")
	if ep.Method != types.MethodPUT {
		t.Errorf("Method = %s, expected PUT", ep.Method)
	}
	if ep.PersistenceOp != types.OpUpdate {
		t.Errorf("PersistenceOp = %s, expected UPDATE", ep.PersistenceOp)
	}
	if ep.Confidence != types.ConfidenceHigh {
		t.Errorf("Confidence = %s, expected high", ep.Confidence)
	}

	ep = c.ClassifyAs(types.MethodUnknown, "/api/users/42", `"/api/users/42"`, "app.js")
	if ep.Method != types.MethodUnknown || ep.PersistenceOp != types.OpRead {
		t.Errorf("ClassifyAs(UNKNOWN) = %s/%s, expected inference to run", ep.Method, ep.PersistenceOp)
	}
}

func TestAddPayloadIndicator(t *testing.T) {
	ep := types.Endpoint{Method: types.MethodUnknown, PayloadIndicators: []string{"user_data", "password"}}
	AddPayloadIndicator(&ep, "json")
	AddPayloadIndicator(&ep, "json")

	expected := []string{"json", "password", "user_data"}
	if strings.Join(ep.PayloadIndicators, ",") != strings.Join(expected, ",") {
		t.Errorf("PayloadIndicators = %v, expected %v", ep.PayloadIndicators, expected)
	}
	if !ep.HasPayload {
		t.Error("HasPayload = false, expected true")
	}
	if ep.Confidence != types.ConfidenceHigh {
		t.Errorf("Confidence = %s, expected high with three indicators", ep.Confidence)
	}
}
