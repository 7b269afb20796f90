// Package validation checks flat string maps against Laravel-style rules.
//
// Rules are pipe-separated strings per field. The first failing rule of a
// field stops the others.
//
//	v := validation.Make(map[string]string{
//	    "APP_ENV":  "staging",
//	    "LOG_LEVEL": "info",
//	}, validation.Rules{
//	    "APP_ENV":   "required|in:local,testing,production",
//	    "LOG_LEVEL": "required|in:trace,debug,info,warn,error",
//	})
//
//	if v.Fails() {
//	    return v.Errors() // *Errors implements error
//	}
//
// # Available Rules
//
//   - required     non-empty after trimming spaces
//   - nullable     an empty value skips the remaining rules
//   - integer, boolean
//   - email        RFC 5322 address
//   - url          http or https URL
//   - addr         host:port, host may be empty (":8000")
//   - min:n, max:n length in characters
//   - in:a,b       value is one of the list
//   - not_in:a,b   value is none of the list
//   - alpha_dash   letters, digits, dashes and underscores
//   - regex:re     value matches re
//
// Unknown rule names pass.
package validation
