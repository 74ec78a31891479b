package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cafeStorefront/internal/signup"
)

type signupPage struct {
	Form  signup.Form
	Flash *Flash
}

// SignupPage renders an empty admin signup form.
func (h *Handler) SignupPage(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "signup", signupPage{Flash: h.deps.Flash.Pop(c)})
}

// SignupSubmit sends the form to the backend once and redirects to the login
// view on success. Failures re-render the form with the server's message.
func (h *Handler) SignupSubmit(c *gin.Context) {
	var f signup.Form
	if err := c.ShouldBind(&f); err != nil {
		f.Fields = fieldErrors(err, &f)
		f.Password = ""
		h.render.HTML(c, http.StatusUnprocessableEntity, "signup", signupPage{Form: f})
		return
	}

	res := h.submitter.Submit(c.Request.Context(), f)
	if res.Redirect == "" {
		h.deps.Logger.Warn("admin_signup_failed",
			"request_id", getRequestID(c),
			"error", res.Form.Error)
		h.render.HTML(c, http.StatusUnprocessableEntity, "signup", signupPage{Form: res.Form})
		return
	}
	h.deps.Flash.Set(c, Flash{Kind: FlashSuccess, Message: "Admin account created. Please log in."})
	c.Redirect(http.StatusFound, res.Redirect)
}
