package rp

import "net/http"

// RepostHTML is the fixed page served on GET /callback for flows whose
// authorization response arrives in the URL fragment.  Fragments never
// reach the server, so the page reposts them (or the query string, for
// providers that fall back to it) as a form body to the same path.
const RepostHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Completing sign-in</title>
</head>
<body>
<noscript>JavaScript is required to complete sign-in.</noscript>
<form id="repost" method="post"></form>
<script>
(function () {
  var raw = window.location.hash ? window.location.hash.substring(1) : window.location.search.substring(1);
  var form = document.getElementById('repost');
  raw.split('&').forEach(function (pair) {
    if (!pair) { return; }
    var eq = pair.indexOf('=');
    var name = eq < 0 ? pair : pair.substring(0, eq);
    var value = eq < 0 ? '' : pair.substring(eq + 1);
    var input = document.createElement('input');
    input.type = 'hidden';
    input.name = decodeURIComponent(name);
    input.value = decodeURIComponent(value.replace(/\+/g, ' '));
    form.appendChild(input);
  });
  form.submit();
}());
</script>
</body>
</html>
`

// repost serves RepostHTML with a fixed content type and body.
func (h *Handler) repost(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(RepostHTML))
}
