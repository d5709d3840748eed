/*
The resp package provides a high-level API for responding to HTTP requests
with an easy way to configure the responses application-wide.

resp provides three main ways of responding to an HTTP request:
- rendering HTML templates
- rendering JSON data
- redirecting

Each takes Fn functional options shaping the response:

	d := resp.NewResponder(resp.WithParser(p), resp.WithRootUrl("http://localhost:8080"))
	d.Html(w, r, resp.Layout(), resp.Tmpls(template.FormTmpl), resp.Data(state))
	d.Redirect(w, r, resp.Code(http.StatusSeeOther))
*/
package resp
