package callback

import (
	"fmt"
	"html"
	"net/http"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>%[1]s</title>
	<style>
		body { font-family: "Segoe UI", Arial, sans-serif; background: #f6f8fb; color: #1d2733; padding: 30px; }
		.card { max-width: 640px; margin: 0 auto; background: white; border-radius: 14px; padding: 24px; box-shadow: 0 10px 30px rgba(20,37,63,.08); }
		h1 { margin: 0 0 12px 0; font-size: 22px; }
		p { margin: 0; font-size: 15px; line-height: 1.45; }
	</style>
</head>
<body>
	<div class="card"><h1>%[1]s</h1><p>%[2]s</p></div>
</body>
</html>`

func writePage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Connection", "close")
	w.WriteHeader(status)
	fmt.Fprintf(w, pageTemplate, html.EscapeString(title), html.EscapeString(message))
}
