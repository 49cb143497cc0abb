package httpx

import (
	"github.com/ariefcatur/go-marketplace/internal/auth"
	"net/http"
)

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResp struct {
	Token string     `json:"token"`
	User  *auth.User `json:"user"`
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := decode(r, &in); err != nil {
		fail(w, r, a.Log, err)
		return
	}
	u, err := a.Auth.Register(r.Context(), in)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusCreated, u)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var in loginReq
	if err := decode(r, &in); err != nil {
		fail(w, r, a.Log, err)
		return
	}
	token, u, err := a.Auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, loginResp{Token: token, User: u})
}
