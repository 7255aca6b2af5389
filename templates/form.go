package templates

// FormIndex lists the available forms.
const FormIndex = `
{{ define "content" }}
<div class="ui container">
	<form class="ui form" action="/" method="get">
		<div class="ui action input">
			<input name="q" value="{{ .search }}" placeholder="Search forms">
			<button class="ui button">Search</button>
		</div>
	</form>
	<table class="ui table">
		<tbody>
		{{ range .forms }}
			<tr>
				<td><a href="/forms/{{ .Name }}">{{ .Name }}</a></td>
				<td>{{ .Description }}</td>
				<td><a href="/forms/{{ .Name }}/submissions">Submissions</a></td>
			</tr>
		{{ else }}
			<tr><td>No forms found</td></tr>
		{{ end }}
		</tbody>
	</table>
</div>
{{ end }}
`

// Form renders the groups of a render plan as a grid of controls. With
// readonly set, the answers of a submission are shown without the submit
// button.
const Form = `
{{ define "content" }}
<div class="ui container">
	<form class="ui form{{ if .errors }} error{{ end }}" action="/forms/{{ .form.Name }}" method="post" enctype="multipart/form-data">
		<h3 class="ui top attached header">{{ .form.Name }}</h3>
		<div class="ui attached segment">
			{{ with .form.Description }}<p>{{ . }}</p>{{ end }}
			{{ if .errors }}
				<div class="ui error message">Please correct the highlighted fields.</div>
			{{ end }}
			{{ range $group := .plan.Groups }}
				<h4 class="ui dividing header" id="{{ $group.ID }}">{{ $group.Title }}</h4>
				<div class="grid grid-cols-12 gap-{{ $group.Spacing }}">
				{{ range $field := $group.Fields }}
					<div class="{{ $group.Span }} {{ if $field.Required }}required {{ end }}field{{ if $field.Error }} error{{ end }}">
						<label for="{{ $field.Name }}"{{ with $field.Tooltip }} title="{{ . }}"{{ end }}>{{ $field.Label }}</label>
						{{ if eq $field.Presentation.Control "textarea" }}
							<textarea id="{{ $field.Name }}" name="{{ $field.Name }}" placeholder="{{ $field.Placeholder }}"{{ with $field.MaxLength }} maxlength="{{ . }}"{{ end }}{{ if $.readonly }} readonly{{ end }}>{{ $field.Content }}</textarea>
						{{ else if eq $field.Presentation.Control "select" }}
							<select id="{{ $field.Name }}" name="{{ $field.Name }}"{{ if $.readonly }} disabled{{ end }}>
								<option value="">Select...</option>
								{{ range $field.Options }}
									<option value="{{ .Value }}"{{ if .Selected }} selected{{ end }}>{{ .Label }}</option>
								{{ end }}
							</select>
						{{ else if eq $field.Presentation.Control "checkbox-group" }}
							{{ range $field.Options }}
								<div class="ui checkbox">
									<input type="checkbox" name="{{ $field.Name }}" value="{{ .Value }}"{{ if .Selected }} checked{{ end }}{{ if $.readonly }} disabled{{ end }}>
									<label>{{ .Label }}</label>
								</div>
							{{ end }}
						{{ else if and (eq $field.Presentation.Control "file") $.readonly }}
							<input id="{{ $field.Name }}" value="{{ $field.Content }}" readonly>
						{{ else }}
							<input id="{{ $field.Name }}" name="{{ $field.Name }}" type="{{ $field.Presentation.InputType }}" value="{{ $field.Content }}" placeholder="{{ $field.Placeholder }}"
								{{- with $field.MinLength }} minlength="{{ . }}"{{ end }}
								{{- with $field.MaxLength }} maxlength="{{ . }}"{{ end }}
								{{- with $field.Pattern }} pattern="{{ . }}"{{ end }}
								{{- with $field.MinValue }} min="{{ . }}"{{ end }}
								{{- with $field.MaxValue }} max="{{ . }}"{{ end }}
								{{- with $field.Step }} step="{{ . }}"{{ end }}
								{{- with $field.MinDate }} min="{{ . }}"{{ end }}
								{{- with $field.MaxDate }} max="{{ . }}"{{ end }}
								{{- with $field.Accept }} accept="{{ . }}"{{ end }}
								{{- with $field.MaxFileSize }} data-max-size="{{ . }}"{{ end }}
								{{- if $.readonly }} readonly{{ end }}>
						{{ end }}
						{{ with $field.Description }}<span class="help">{{ . }}</span>{{ end }}
						{{ with $field.Error }}<div class="ui basic red pointing prompt label">{{ . }}</div>{{ end }}
					</div>
				{{ end }}
				</div>
			{{ end }}
			{{ if not .readonly }}
				<div class="field">
					<button class="ui green button">Submit</button>
				</div>
			{{ end }}
			{{ if .submit_time }}
				<div>
					Submitted {{ .submit_time }}
				</div>
				<div>
					{{ if .end_time }}
						Finished {{ .end_time }}
					{{ else }}
						In queue
					{{ end }}
				</div>
			{{ end }}
			{{ range .messages }}
				<div>{{ . }}</div>
			{{ end }}
			{{ with .error }}
				<div class="ui negative message">{{ . }}</div>
			{{ end }}
		</div>
	</form>
</div>
{{ end }}
`
