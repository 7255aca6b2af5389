package templates

// SubmissionLog lists the submissions of a form with the state of their
// post-submit action.
const SubmissionLog = `
{{ define "content" }}
<div class="ui container">
	<h3 class="ui header">Submissions of <a href="/forms/{{ .form.Name }}">{{ .form.Name }}</a></h3>
	<table class="ui unstackable fixed single line table">
		<thead>
			<tr><th>Submission</th><th>Submitted</th><th>Status</th></tr>
		</thead>
		<tbody>
		{{ range .submissions }}
			<tr>
				<td><a href="/forms/{{ $.form.Name }}/submissions/{{ .ID }}">[S{{ .ID }}] {{ .Label }}</a></td>
				<td>{{ .SubmitTime.Format "2006-01-02 15:04:05" }}</td>
				<td>
					{{ if .Error }}Failed: {{ .Error }}
					{{ else if .IsFinished }}Finished
					{{ else }}In queue{{ end }}
				</td>
			</tr>
		{{ else }}
			<tr><td colspan="3">No submissions yet</td></tr>
		{{ end }}
		</tbody>
	</table>
</div>
{{ end }}
`
