package controllers

import (
	"net/http"

	"github.com/rmartinelli/shopcart-backend/api/responses"
	"github.com/rmartinelli/shopcart-backend/internal/products"
	pkgerrors "github.com/rmartinelli/shopcart-backend/pkg/errors"
	"github.com/rmartinelli/shopcart-backend/pkg/logger"
)

type uploadResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// UploadImage stores a standalone image from the "image" multipart field and
// returns its public URL.
func UploadImage(store products.ImageStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "no image file provided"))
			return
		}
		defer file.Close()

		if header.Filename == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "no selected file"))
			return
		}

		name, url, err := store.Save(header.Filename, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "store image"))
			return
		}

		responses.WriteSuccess(w, uploadResponse{Filename: name, URL: url})
	}
}
