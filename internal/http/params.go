package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/planner-shop/internal/apperr"
)

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	var id uuid.UUID
	if err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		},
	); err != nil {
		return uuid.UUID{}, apperr.ValidationErr.WithMsg("invalid format for parameter " + name).WrapParent(err)
	}
	return id, nil
}

func pathString(r *http.Request, name string) (string, error) {
	var v string
	if err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		},
	); err != nil {
		return "", apperr.ValidationErr.WithMsg("invalid format for parameter " + name).WrapParent(err)
	}
	return v, nil
}
