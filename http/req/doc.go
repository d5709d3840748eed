/*
Package req provides ergonomics for handling an HTTP request.

Package req provides a helper for parsing the url-encoded forms posted in an HTTP request.
Package req expects to parse a form into a pointer to a struct.
That struct ought to leverage the apporpriate struct tags for performing two tasks.
First, matching keys in the payload to fields on the struct.
Second, for validating the payload's data meets requirements.

By leveraging req, handlers can get data out of an HTTP request into its application specific structs.
Notably, the parade of errors that may propogate from such a task
are translated to trailhead sentinel errors in order to provide a consistent interface
for issues that arise decoding and validating forms.
*/
package req
