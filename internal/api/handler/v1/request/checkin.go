package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// ResolveCheckInRequest takes either the bare reference or the full scanned URL.
type ResolveCheckInRequest struct {
	Reference string `json:"reference"`
}

func (req *ResolveCheckInRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Reference, validation.Required, validation.Length(1, 2048)),
	)
}
