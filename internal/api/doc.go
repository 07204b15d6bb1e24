// Package api is the REST client of the patient service.
//
// [Client] implements core.Backend over HTTP/JSON with go-resty. Requests
// are not retried; every request carries a fresh X-Request-ID header that
// is also logged, so a failure on screen can be matched with server logs.
//
// Endpoints:
//
//	GET    /patient                           all patients (array or page object)
//	GET    /patient?page=&size=&sort=&search= one page
//	GET    /patient/{id}
//	POST   /patient
//	PUT    /patient/{id}
//	DELETE /patient/{id}
//
// Failures are returned as *core.RequestError. When the service answers
// with a JSON body carrying "message", that text is kept verbatim.
package api
