// Package validation checks upload input and reports failures as
// INVALID_INPUT errors whose details list every rejected field.
//
// Struct tags cover typed requests:
//
//	type Request struct {
//	    Language string `json:"language" validate:"required,oneof=en ur"`
//	}
//	err := validation.Struct(req)
//
// Form values are checked one by one:
//
//	v := validation.New()
//	v.Required("language", raw).OptionalUUID("job_id", id)
//	if err := v.Err(); err != nil { ... }
package validation
