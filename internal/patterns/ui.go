package patterns

import "github.com/su1ph3r/effodio/pkg/types"

// UIElementRules find interactive elements in layout XML and HTML markup.
// Group 1 holds the element's attribute text. An element claimed by an earlier
// set is not reported again by a later one.
var UIElementRules = []RuleSet[string]{
	{Effect: types.UIKindButton, Rules: []*Rule{
		NewRule("xml-button", `<(?:[\w.]+\.)?(?:Button|ImageButton|MaterialButton|AppCompatButton|FloatingActionButton)\b([^>]*)>`, 1),
		NewRule("html-button", `(?i)<button\b([^>]*)>`, 1),
		NewRule("html-input-button", `(?i)<input\b([^>]*\btype\s*=\s*["']?(?:button|submit|reset|image)["']?[^>]*)>`, 1),
	}},
	{Effect: types.UIKindTextField, Rules: []*Rule{
		NewRule("xml-edit-text", `<(?:[\w.]+\.)?(?:EditText|TextInputEditText|AutoCompleteTextView|AppCompatEditText)\b([^>]*)>`, 1),
		NewRule("html-input", `(?i)<(?:input|textarea)\b([^>]*)>`, 1),
	}},
	{Effect: types.UIKindImage, Rules: []*Rule{
		NewRule("xml-image", `<(?:[\w.]+\.)?(?:ImageView|AppCompatImageView|ShapeableImageView)\b([^>]*)>`, 1),
		NewRule("html-img", `(?i)<img\b([^>]*)>`, 1),
	}},
}

// Attribute extraction for matched elements
var (
	AndroidIDRule   = NewRule("android-id", `android:id\s*=\s*"@\+?id/([\w.]+)"`, 1)
	AndroidTextRule = NewRule("android-text", `android:(?:text|hint|contentDescription)\s*=\s*"([^"]+)"`, 1)
	HTMLIDRule      = NewRule("html-id", `(?i)\b(?:id|name)\s*=\s*["']([^"']+)["']`, 1)
	HTMLTextRule    = NewRule("html-text", `(?i)\b(?:value|placeholder|alt|title|aria-label)\s*=\s*["']([^"']+)["']`, 1)
)

// ListenerRules detect event wiring in the window around a UI element. The
// rule name is the listener reported on the component.
var ListenerRules = []*Rule{
	NewRule("onClick", `(?i)\bonClick\b|setOnClickListener\s*\(|android:onClick\s*=|\bonclick\s*=|addEventListener\s*\(\s*["']click["']|\.click\s*\(`, 0),
	NewRule("onLongClick", `(?i)setOnLongClickListener\s*\(|\bonLongClick\b|\bondblclick\s*=`, 0),
	NewRule("onTextChanged", `addTextChangedListener\s*\(|\bTextWatcher\b|\bonTextChanged\b|(?i:\boninput\s*=|\bonchange\s*=|addEventListener\s*\(\s*["'](?:input|change)["'])`, 0),
	NewRule("onEditorAction", `setOnEditorActionListener\s*\(|\bonEditorAction\b|(?i:\bonkeyup\s*=|\bonkeydown\s*=|\bonsubmit\s*=)`, 0),
	NewRule("onFocusChange", `setOnFocusChangeListener\s*\(|\bonFocusChange\b|(?i:\bonfocus\s*=|\bonblur\s*=)`, 0),
	NewRule("onTouch", `setOnTouchListener\s*\(|\bonTouch\b|(?i:\bontouchstart\s*=|\bonmouseover\s*=)`, 0),
}

// UI binding cues used when classifying an endpoint's context
var (
	UIButtonCue = NewRule("button-cue", `(?i)\bbutton\b|\bbtn\w*|setOnClickListener|\bonClick\b|addEventListener\s*\(\s*["']click["']`, 0)
	UIInputCue  = NewRule("input-cue", `(?i)\bEditText\b|<input\b|<textarea\b|\binput\b|getText\s*\(\s*\)|\.value\b|TextWatcher`, 0)
	UITextRules = []*Rule{
		NewRule("label-text", `(?i)\b(?:text|label|title|android:text)\s*[:=]\s*["']([^"'\n]{1,60})["']`, 1),
		NewRule("button-inner-text", `(?i)<button\b[^>]*>\s*([^<\n]{1,60}?)\s*</button>`, 1),
		NewRule("set-text", `\bsetText\s*\(\s*"([^"\n]{1,60})"`, 1),
	}
)

// UIEventRules decide the event type, in priority order Click, Submit, Change
var UIEventRules = []RuleSet[string]{
	{Effect: "Click", Rules: []*Rule{NewRule("click-event", `(?i)\bon_?click\b|setOnClickListener|["']click["']|\.click\s*\(`, 0)}},
	{Effect: "Submit", Rules: []*Rule{NewRule("submit-event", `(?i)\bonsubmit\b|["']submit["']|\.submit\s*\(|type\s*=\s*["']submit["']|onEditorAction`, 0)}},
	{Effect: "Change", Rules: []*Rule{NewRule("change-event", `(?i)\bonchange\b|["']change["']|\bonTextChanged\b|addTextChangedListener|["']input["']`, 0)}},
}
