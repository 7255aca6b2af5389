package templates

// Layout is the main site template. It includes the header and footer and
// embeds the content for every other page.
var Layout = `
{{ define "layout" }}
<!DOCTYPE html>
<html>
	<head>
		<meta charset="utf-8">
		<link rel="stylesheet" href="/assets/semantic-2.3.1.min.css">
		<link rel="stylesheet" href="/assets/grid.css">
		<link rel="stylesheet" href="/assets/custom.css">
		<title>formdesk</title>
	</head>
	<body>
		<div class="full height">
			<div class="following bar light">
				<div class="ui container">
					<div class="ui top secondary menu">
						<a class="item brand" href="/">formdesk</a>
						<a class="item" href="/">Forms</a>
					</div>
				</div>
			</div>
			{{ template "content" . }}
		</div>
		<footer>
			<div class="ui container">
				<div class="ui center links item brand footertext">formdesk</div>
			</div>
		</footer>
	</body>
</html>
{{ end }}
`
