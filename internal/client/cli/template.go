package cli

import (
	"text/template"
	"time"
)

var templateFuncs = template.FuncMap{
	"since": func(t time.Time) string {
		return time.Since(t).Round(time.Second).String()
	},
	"unix": func(ts int64) string {
		if ts == 0 {
			return "never"
		}
		return time.Unix(ts, 0).Format(time.RFC3339)
	},
}

const statusTemplate = `=== Sync Status ===

Connection:      {{if .Online}}online{{else}}offline{{end}}
Pending:         {{.Stats.Pending}}{{if .Stats.Retrying}} ({{.Stats.Retrying}} retrying){{end}}
In flight:       {{.Stats.InFlight}}
Failed:          {{.Stats.Failed}}
Badge:           {{.Badge}}{{if not .BadgeSupported}} (display not supported){{end}}
Last sync:       {{unix .LastSync}}
Background sync: {{if .Agent}}agent {{.Agent.Version}}, {{.Agent.Clients}} client(s), {{.Agent.Registered}} tag(s){{else}}not available{{end}}
`

const itemTemplate = `
=== Queued Action ===

ID:        {{.ID}}
Kind:      {{.Kind}}
Endpoint:  {{.HTTPMethod}} {{.Endpoint}}
Queued:    {{.CreatedAt.Format "2006-01-02 15:04:05"}} ({{since .CreatedAt}} ago)
Attempts:  {{.RetryCount}} of {{.MaxRetries}} retries
{{- if .LastError }}
Last error: {{.LastError}}
{{- end}}
{{- range $name, $value := .Headers }}
Header:    {{$name}}: {{$value}}
{{- end}}
Payload:
---
{{printf "%s" .Payload}}
---
`

var (
	statusTmpl = template.Must(template.New("status").Funcs(templateFuncs).Parse(statusTemplate))
	itemTmpl   = template.Must(template.New("item").Funcs(templateFuncs).Parse(itemTemplate))
)
