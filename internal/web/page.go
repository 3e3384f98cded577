package web

import (
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"mytasks/internal/output"
	"mytasks/internal/task"
	"mytasks/internal/theme"
)

type card struct {
	Index     int
	Title     string
	Summary   string
	NoSummary bool
}

type pageData struct {
	Theme     theme.Theme
	NextTheme theme.Theme
	Cards     []card
	Empty     string
	Error     string
}

func newPageData(tasks []task.Task, th theme.Theme) pageData {
	cards := make([]card, len(tasks))
	for i, t := range tasks {
		cards[i] = card{
			Index:     i,
			Title:     output.NormalizeTitle(t.Title),
			Summary:   output.Summary(t),
			NoSummary: output.Summary(t) == output.NoSummaryMessage,
		}
	}
	return pageData{
		Theme:     th,
		NextTheme: th.Toggle(),
		Cards:     cards,
		Empty:     output.EmptyMessage,
	}
}

type templateRenderer struct {
	tmpl *template.Template
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}

var pageTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en" data-theme="{{.Theme}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>My Tasks</title>
<style>
  :root[data-theme="light"] { --bg: #ffffff; --fg: #1a1b1e; --muted: #868e96; --card: #f8f9fa; --border: #dee2e6; --accent: #228be6; }
  :root[data-theme="dark"]  { --bg: #1a1b1e; --fg: #c1c2c5; --muted: #909296; --card: #25262b; --border: #373a40; --accent: #4dabf7; }
  body { background: var(--bg); color: var(--fg); font-family: system-ui, sans-serif; max-width: 40rem; margin: 2rem auto; padding: 0 1rem; }
  header { display: flex; justify-content: space-between; align-items: center; }
  .card { background: var(--card); border: 1px solid var(--border); border-radius: 8px; padding: .75rem 1rem; margin: .75rem 0; display: flex; justify-content: space-between; gap: 1rem; }
  .card h2 { font-size: 1rem; margin: 0 0 .25rem; }
  .card p { margin: 0; }
  .muted { color: var(--muted); }
  .error { color: #e03131; }
  button { background: var(--accent); color: #fff; border: 0; border-radius: 4px; padding: .4rem .8rem; cursor: pointer; }
  input { display: block; width: 100%; margin: .25rem 0 .75rem; padding: .4rem; box-sizing: border-box; }
  fieldset { border: 1px solid var(--border); border-radius: 8px; }
</style>
</head>
<body>
<header>
  <h1>My Tasks</h1>
  <form method="post" action="/theme">
    <input type="hidden" name="theme" value="{{.NextTheme}}">
    <button type="submit">Switch to {{.NextTheme}} (ctrl+j)</button>
  </form>
</header>
<main>
{{- if .Error}}
  <p class="error">{{.Error}}</p>
{{- end}}
{{- range .Cards}}
  <div class="card">
    <div>
      <h2>{{.Title}}</h2>
      <p{{if .NoSummary}} class="muted"{{end}}>{{.Summary}}</p>
    </div>
    <form method="post" action="/tasks/{{.Index}}/delete">
      <button type="submit" aria-label="Delete task">Delete</button>
    </form>
  </div>
{{- else}}
  <p class="muted">{{.Empty}}</p>
{{- end}}
  <form method="post" action="/tasks">
    <fieldset>
      <legend>New Task</legend>
      <label>Title <input name="title" required></label>
      <label>Summary <input name="summary"></label>
      <button type="reset">Cancel</button>
      <button type="submit">Create Task</button>
    </fieldset>
  </form>
</main>
<script>
  document.addEventListener("keydown", function (e) {
    if ((e.ctrlKey || e.metaKey) && e.key === "j") {
      e.preventDefault();
      document.querySelector("header form").submit();
    }
  });
</script>
</body>
</html>
`))
