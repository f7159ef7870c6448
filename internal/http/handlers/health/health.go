// Package health serves the root liveness endpoint.
package health

import (
	"net/http"

	"github.com/aanand-mishra/student-management-api/internal/utils/response"
)

// Message is the static body returned by GET /.
const Message = "Student Management API is running!"

// Root handles GET / and always answers 200 with a static message. It does
// not touch the database.
func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, response.Message{Message: Message})
	}
}
