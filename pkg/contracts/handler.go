package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by every HTTP vertical so the application can
// mount its routes without knowing about it.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
