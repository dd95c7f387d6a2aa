// Package suggest produces candidate action quadruples, either from
// deterministic per-content-type tables or from the remote completion
// service. Both sources share the classifier in internal/classify, so
// detection cannot drift between them.
package suggest

import "actionnerd/internal/action"

// Heuristic returns the hardcoded action quadruple for a content type.
// It is the guaranteed fallback of the whole engine: pure, total and
// I/O-free, with a quadruple for every variant including Generic.
func Heuristic(ct action.ContentType) []action.Action {
	switch ct {
	case action.TypeCode:
		return []action.Action{
			{ID: "explain_code", Label: "Explain Code", Icon: "💡", Description: "Explain what this code does, step by step"},
			{ID: "find_bugs", Label: "Find Bugs", Icon: "🐛", Description: "Review this code for bugs and pitfalls"},
			{ID: "refactor_code", Label: "Refactor", Icon: "🔧", Description: "Suggest a cleaner refactoring of this code"},
			{ID: "write_tests", Label: "Write Tests", Icon: "🧪", Description: "Write unit tests covering this code"},
		}
	case action.TypeEmail:
		return []action.Action{
			{ID: "draft_reply", Label: "Draft Reply", Icon: "✉️", Description: "Draft a reply to this message"},
			{ID: "summarize_email", Label: "Summarize", Icon: "📋", Description: "Summarize this message in a few sentences"},
			{ID: "extract_tasks", Label: "Extract Tasks", Icon: "✅", Description: "List the action items in this message"},
			{ID: "polish_tone", Label: "Polish Tone", Icon: "✨", Description: "Rewrite this message with a clearer, friendlier tone"},
		}
	case action.TypeList:
		return []action.Action{
			{ID: "summarize_list", Label: "Summarize List", Icon: "📋", Description: "Summarize what this list is about"},
			{ID: "prioritize_items", Label: "Prioritize", Icon: "🔝", Description: "Order these items by importance"},
			{ID: "categorize_items", Label: "Categorize", Icon: "🗂️", Description: "Group these items into categories"},
			{ID: "extract_insights", Label: "Find Insights", Icon: "💡", Description: "Point out patterns or insights in this list"},
		}
	case action.TypeNumericData:
		return []action.Action{
			{ID: "analyze_numbers", Label: "Analyze", Icon: "📊", Description: "Analyze these figures and what they imply"},
			{ID: "find_trends", Label: "Find Trends", Icon: "📈", Description: "Describe trends visible in these numbers"},
			{ID: "explain_figures", Label: "Explain", Icon: "💡", Description: "Explain what these figures mean in plain language"},
			{ID: "sanity_check", Label: "Sanity Check", Icon: "🔍", Description: "Check these numbers for inconsistencies"},
		}
	case action.TypeQuestion:
		return []action.Action{
			{ID: "answer_question", Label: "Answer", Icon: "💬", Description: "Answer this question directly"},
			{ID: "explain_simply", Label: "Explain Simply", Icon: "🧩", Description: "Explain the topic behind this question simply"},
			{ID: "list_viewpoints", Label: "Viewpoints", Icon: "⚖️", Description: "Present different viewpoints on this question"},
			{ID: "suggest_sources", Label: "Sources", Icon: "🔎", Description: "Suggest where to verify the answer"},
		}
	case action.TypeLongText:
		return []action.Action{
			{ID: "summarize", Label: "Summarize", Icon: "📋", Description: "Summarize this text concisely"},
			{ID: "key_points", Label: "Key Points", Icon: "🔑", Description: "Extract the key points as bullets"},
			{ID: "simplify_text", Label: "Simplify", Icon: "✨", Description: "Rewrite this text in simpler language"},
			{ID: "translate", Label: "Translate", Icon: "🌐", Description: "Translate this text to English"},
		}
	case action.TypeImage:
		return []action.Action{
			{ID: "describe_image", Label: "Describe", Icon: "🖼️", Description: "Describe what this image likely shows given its context"},
			{ID: "explain_context", Label: "In Context", Icon: "💡", Description: "Explain the role of this image on the page"},
			{ID: "suggest_caption", Label: "Caption", Icon: "💬", Description: "Suggest a caption for this image"},
			{ID: "suggest_alt_text", Label: "Alt Text", Icon: "♿", Description: "Write accessible alt text for this image"},
		}
	case action.TypeChart:
		return []action.Action{
			{ID: "interpret_chart", Label: "Interpret", Icon: "📈", Description: "Interpret what this chart shows"},
			{ID: "summarize_data", Label: "Summarize Data", Icon: "📊", Description: "Summarize the data behind this chart"},
			{ID: "spot_anomalies", Label: "Anomalies", Icon: "🚨", Description: "Point out anomalies or outliers in this chart"},
			{ID: "explain_axes", Label: "Explain Axes", Icon: "💡", Description: "Explain the axes and units of this chart"},
		}
	case action.TypeTable:
		return []action.Action{
			{ID: "summarize_table", Label: "Summarize Table", Icon: "📋", Description: "Summarize what this table contains"},
			{ID: "analyze_columns", Label: "Analyze", Icon: "📊", Description: "Analyze the columns and their relationships"},
			{ID: "find_outliers", Label: "Outliers", Icon: "🚨", Description: "Find outlier rows in this table"},
			{ID: "table_to_text", Label: "To Prose", Icon: "📝", Description: "Rewrite this table as readable prose"},
		}
	case action.TypeInteractive:
		return []action.Action{
			{ID: "explain_control", Label: "What Is This", Icon: "💡", Description: "Explain what this control does"},
			{ID: "predict_outcome", Label: "What Happens", Icon: "🔮", Description: "Predict what happens when this is used"},
			{ID: "describe_risks", Label: "Risks", Icon: "⚠️", Description: "Describe any risks of using this control"},
			{ID: "suggest_usage", Label: "How To Use", Icon: "📝", Description: "Explain how to use this control correctly"},
		}
	case action.TypeForm:
		return []action.Action{
			{ID: "explain_form", Label: "Explain Form", Icon: "💡", Description: "Explain what this form collects and why"},
			{ID: "suggest_values", Label: "Fill Help", Icon: "✍️", Description: "Suggest how to fill these fields"},
			{ID: "check_privacy", Label: "Privacy", Icon: "🔒", Description: "Flag fields with privacy implications"},
			{ID: "summarize_fields", Label: "Fields", Icon: "📋", Description: "Summarize the fields this form asks for"},
		}
	case action.TypeGeneric:
		return genericQuadruple()
	default:
		// Unknown variants cannot occur for the closed set, but the
		// fallback must stay total.
		return genericQuadruple()
	}
}

func genericQuadruple() []action.Action {
	return []action.Action{
		{ID: "explain", Label: "Explain", Icon: "💡", Description: "Explain this content"},
		{ID: "summarize", Label: "Summarize", Icon: "📋", Description: "Summarize this content"},
		{ID: "rewrite", Label: "Rewrite", Icon: "✍️", Description: "Rewrite this content more clearly"},
		{ID: "translate", Label: "Translate", Icon: "🌐", Description: "Translate this content to English"},
	}
}
