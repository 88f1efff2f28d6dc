// Package validator runs schemas over decoded request data.
//
// A Schema is any function that inspects data and reports a Result. Struct
// builds one from a Go type whose fields carry go-playground/validator tags:
//
//	type CreateUser struct {
//		Name  string `json:"name" validate:"required,min=2"`
//		Email string `json:"email" validate:"required,email"`
//	}
//
//	res := validator.Struct[CreateUser]()(data)
//	if !res.Success {
//		// res.Errors lists failures by JSON path, e.g. "email"
//	}
//	user := res.Data.(CreateUser)
//
// Func adapts a plain predicate when no struct is needed. Result.Err returns
// the failures as an error that maps to 422 Unprocessable Entity.
package validator
