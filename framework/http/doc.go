// Package http provides Laravel-style request and response helpers used by
// the inspector and the accounts API.
//
// # Request
//
//	req := gohttp.NewRequest(r)
//
//	var payload struct {
//	    Email string `json:"email"`
//	}
//	if err := req.Bind(&payload); err != nil { ... }
//
//	name := req.RouteParam("name")
//	fmt  := req.Query("format", "json")
//
// # Response
//
//	res := gohttp.NewResponse(w)
//	res.Success(providers)                    // 200 {"data": ...}
//	res.NotFound()                            // 404 {"message": "Not found."}
//	res.ValidationError(v.Errors())           // 422 {"errors": {...}}
//	res.Text(http.StatusOK, "text/plain", s)
//
// JSON is encoded with github.com/goccy/go-json.
package http
