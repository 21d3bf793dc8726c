package server

import (
	validation "github.com/jellydator/validation"

	"github.com/jrsteele09/go-dbgate/gate"
)

// AuthenticateRequest is the payload for POST /v1/authenticate.
type AuthenticateRequest struct {
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
}

func (r AuthenticateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Identity, validation.Required.Error("identity is required")),
		validation.Field(&r.Secret, validation.Required.Error("secret is required")),
	)
}

// AuthenticateResponse carries the signed bearer token.
type AuthenticateResponse struct {
	Token string `json:"token"`
}

// ConsentRequest is the payload for POST /v1/consent. Table may be empty
// for operations with no resource concept.
type ConsentRequest struct {
	Operation string `json:"operation"`
	Table     string `json:"table"`
}

func (r ConsentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Operation, validation.Required.Error("operation is required")),
	)
}

// OperationRequest is the payload for POST /v1/operations/{operation}.
type OperationRequest struct {
	gate.Request
}

// ErrorResponse reports an internal failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DeniedResponse reports an authorization denial; distinguishable from
// both success payloads and internal errors.
type DeniedResponse struct {
	Denied string `json:"denied"`
}
