package templates

// Fail shows an error status with a message.
var Fail = `
{{ define "content" }}
<div class="ui container">
	<h1>{{ .StatusCode }}: {{ .StatusText }}</h1>
	<div class="ui negative message">
		{{ .Message }}
	</div>
</div>
{{ end }}
`
