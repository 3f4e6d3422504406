// Package handler adapts typed request handlers to net/http.
//
// A HandlerFunc receives a Context and a bound request value and returns a
// Response. Wrap applies binders, decorators and the error handler:
//
//	type loginRequest struct {
//		Email    string `json:"email"`
//		Password string `json:"password"`
//	}
//
//	func login(ctx handler.Context, req loginRequest) handler.Response {
//		res, err := svc.Login(ctx, req)
//		if err != nil {
//			return handler.Error(err)
//		}
//		return handler.JSON(res)
//	}
//
//	r.Post("/login", handler.Wrap(login,
//		handler.WithBinder[loginRequest](binder.JSON()),
//		handler.WithErrorHandler[loginRequest](errorHandler),
//	))
//
// Errors returned by binders, by Response.Render or through Error all reach
// the ErrorHandler. NewErrorHandler classifies them into an HTTPError, logs
// 4xx at warn and 5xx at error, and writes a JSON error body.
package handler
