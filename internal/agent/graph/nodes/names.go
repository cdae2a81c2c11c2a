package nodes

// Graph node keys.
const (
	NodeInputConverter = "input_converter"
	NodeQuickAnswer    = "quick_answer"
	NodeExtractItems   = "extract_items"
	NodeAnalyzeItems   = "analyze_items"
	NodeGenerateIdeas  = "generate_ideas"
)
