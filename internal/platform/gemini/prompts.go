package gemini

// Prompt templates for the three generation shapes. They are plain data
// so wording can be tuned without touching the call paths. All three
// instruct the model to answer in strict JSON where structure matters,
// which keeps parsing deterministic.

const articlePromptTemplate = `You are an expert technical educator writing a daily
learning digest for an experienced engineer.

Write a focused article teaching the topic below. Aim for depth over
breadth: explain the core idea, why it matters, one concrete example,
and common misconceptions. Use markdown.

Topic: {{.Topic}}
Category: {{.Category}}{{if .Rationale}}
Why this topic today: {{.Rationale}}{{end}}

Respond with a single JSON object, no code fences, with exactly these keys:
{
  "body": "the full markdown article",
  "summary": "a recall aid of at most 50 words capturing the essence"
}`

const reviewPromptTemplate = `You are an examiner helping a learner retain knowledge
through active recall.

The learner studied the topic below {{.StageDescription}}. Write a short
review for it: open with one or two recall questions that force the
learner to reconstruct the core idea from memory, then give a compact
answer key. Use markdown. Do not re-teach the topic from scratch.

Topic: {{.Topic}}
Category: {{.Category}}{{if .Summary}}
Recall aid from first learning: {{.Summary}}{{end}}
Review stage: {{.Stage}} of {{.MaxStage}}`

const topicPromptTemplate = `You are curating a daily learning path in AI and machine
learning for an experienced engineer. Suggest exactly one new topic worth
learning today.

Rules:
- It must not duplicate or trivially overlap anything already learned.
- Prefer topics with lasting value over news.
- Pick the single best category from: Foundations, Engineering, SOTA,
  Reasoning, History, Architecture, Training, Alignment, Efficiency,
  Multimodal, Agent, Generation, Application, Frontier, General.

Already learned ({{.LearnedCount}} topics{{if .LearnedTopics}}, most recent first{{end}}):
{{- range .LearnedTopics}}
- {{.}}
{{- else}}
(no learning history yet)
{{- end}}

Today: {{.Date}}

Respond with a single JSON object, no code fences, with exactly these keys:
{
  "topic": "the topic name",
  "category": "one category from the list",
  "why": "one sentence on why this topic is worth learning now"
}`
