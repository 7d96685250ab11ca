package smtpmail

import (
	"bytes"
	"html/template"

	"github.com/phrazzld/recall-api/internal/notify"
)

// digestTemplate renders a notify.Digest as a self-contained HTML page.
// Markdown bodies are inserted preformatted rather than converted; mail
// clients render them legibly and the content generator already writes
// for human reading.
var digestTemplate = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: -apple-system, 'Segoe UI', sans-serif; max-width: 720px; margin: 0 auto; padding: 16px; color: #222;">
  <h1 style="border-bottom: 2px solid #4a6fa5; padding-bottom: 8px;">Daily Knowledge — {{.Date.Format "2006-01-02"}}</h1>

  {{if .NewItem}}
  <h2>{{.NewItem.Category.Info.Tag}} Today&#39;s Topic: {{.NewItem.Topic}}</h2>
  <div style="background: #f7f9fc; border-left: 4px solid #4a6fa5; padding: 12px; white-space: pre-wrap;">{{.NewItem.Body}}</div>
  {{end}}

  {{if .Reviews}}
  <h2>🔄 Reviews Due ({{len .Reviews}})</h2>
  {{range .Reviews}}
  <h3>{{.Category.Info.Tag}} {{.Topic}} <small style="color: #888;">(stage {{.Stage}})</small></h3>
  <div style="background: #fcf8f2; border-left: 4px solid #d9a05b; padding: 12px; white-space: pre-wrap;">{{.Prompt}}</div>
  {{end}}
  {{end}}

  {{if and (not .NewItem) (not .Reviews)}}
  <p>Nothing new and nothing due today. Enjoy the break.</p>
  {{end}}

  <hr style="margin-top: 24px; border: none; border-top: 1px solid #ddd;">
  <p style="color: #888; font-size: 13px;">
    Topics learned: {{.Stats.LearnedCount}} · Due today: {{.Stats.DueCount}}
  </p>
</body>
</html>
`))

// RenderHTML renders the digest to the HTML email body. It is also
// used by dry runs to write a local preview of what would have been
// sent.
func RenderHTML(digest *notify.Digest) (string, error) {
	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, digest); err != nil {
		return "", err
	}
	return buf.String(), nil
}
