package domain

// Category tags a knowledge card with the area it belongs to.
// The set below is fixed for display purposes, but unknown category
// strings are tolerated: they are stored verbatim and fall back to the
// General display info.
type Category string

// Known category values
const (
	CategoryFoundations  Category = "Foundations"
	CategoryEngineering  Category = "Engineering"
	CategorySOTA         Category = "SOTA"
	CategoryReasoning    Category = "Reasoning"
	CategoryHistory      Category = "History"
	CategoryArchitecture Category = "Architecture"
	CategoryTraining     Category = "Training"
	CategoryAlignment    Category = "Alignment"
	CategoryEfficiency   Category = "Efficiency"
	CategoryMultimodal   Category = "Multimodal"
	CategoryAgent        Category = "Agent"
	CategoryGeneration   Category = "Generation"
	CategoryApplication  Category = "Application"
	CategoryFrontier     Category = "Frontier"
	CategoryGeneral      Category = "General"
)

// CategoryInfo carries the display attributes of a category.
type CategoryInfo struct {
	Tag         string // short display marker used in digests and status output
	Description string
}

var categoryInfos = map[Category]CategoryInfo{
	CategoryFoundations:  {Tag: "🟢", Description: "math and first principles"},
	CategoryEngineering:  {Tag: "🔵", Description: "systems and optimization"},
	CategorySOTA:         {Tag: "🟣", Description: "state of the art techniques"},
	CategoryReasoning:    {Tag: "🟠", Description: "agents and prompting"},
	CategoryHistory:      {Tag: "🟡", Description: "history and field lore"},
	CategoryArchitecture: {Tag: "🏗️", Description: "model architecture"},
	CategoryTraining:     {Tag: "⚙️", Description: "training methods"},
	CategoryAlignment:    {Tag: "🎯", Description: "alignment and safety"},
	CategoryEfficiency:   {Tag: "⚡", Description: "efficient inference and deployment"},
	CategoryMultimodal:   {Tag: "🎨", Description: "multimodal learning"},
	CategoryAgent:        {Tag: "🤖", Description: "agent systems"},
	CategoryGeneration:   {Tag: "✨", Description: "generative models"},
	CategoryApplication:  {Tag: "💼", Description: "applications"},
	CategoryFrontier:     {Tag: "🚀", Description: "frontier topics"},
	CategoryGeneral:      {Tag: "📚", Description: "general knowledge"},
}

// Info returns the display attributes for the category. Unknown
// categories resolve to the General info while keeping their stored
// value untouched.
func (c Category) Info() CategoryInfo {
	if info, ok := categoryInfos[c]; ok {
		return info
	}
	return categoryInfos[CategoryGeneral]
}

// IsKnown reports whether the category is one of the fixed set.
func (c Category) IsKnown() bool {
	_, ok := categoryInfos[c]
	return ok
}
