// Package types holds the shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, and utils can all import types without depending
// on each other.
package types

// StudentInput is the payload accepted by create and update.
//
// Both operations take the full set of business fields; there is no
// partial-update shape. The validate:"..." tags are checked by the
// go-playground/validator package before anything reaches storage:
//
//   - name and course: 1 to 100 characters
//   - email: well-formed address
//   - age: 16 to 100 inclusive
type StudentInput struct {
	Name   string `json:"name"   validate:"required,min=1,max=100"`
	Email  string `json:"email"  validate:"required,email"`
	Age    int    `json:"age"    validate:"required,gte=16,lte=100"`
	Course string `json:"course" validate:"required,min=1,max=100"`
}

// Student is a persisted student record and the shape returned to clients.
//
// The input fields are embedded, so encoding/json flattens them next to id:
//
//	{ "id": 1, "name": "Ada", "email": "ada@x.com", "age": 30, "course": "CS" }
type Student struct {
	ID int64 `json:"id"`
	StudentInput
}
