package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
	"github.com/KirkDiggler/aionia-sheet/internal/services/characters"
)

const imageField = "image"

type listResponse struct {
	Characters []*characters.Summary `json:"characters"`
}

func (h *Handler) listCharacters(w http.ResponseWriter, r *http.Request) {
	list, err := h.characters.List(r.Context(), identity(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*characters.Summary{}
	}
	writeJSON(w, http.StatusOK, listResponse{Characters: list})
}

func (h *Handler) getCharacter(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeErrorMessage(w, http.StatusBadRequest, "id is required")
		return
	}

	ch, err := h.characters.Get(r.Context(), identity(r).UserID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

// saveCharacter accepts {"id": ..., "character": <record>} or a bare record with ?id=
func (h *Handler) saveCharacter(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !gjson.ValidBytes(body) {
		writeErrorMessage(w, http.StatusBadRequest, "request body must be JSON")
		return
	}

	id := r.URL.Query().Get("id")
	raw := body
	if envelope := gjson.GetBytes(body, "character"); envelope.IsObject() && envelope.Get("character").Exists() {
		if v := gjson.GetBytes(body, "id"); v.Type == gjson.String {
			id = v.String()
		}
		raw = []byte(envelope.Raw)
	}

	ch, err := h.characters.Save(r.Context(), identity(r).UserID, id, raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

func (h *Handler) deleteCharacter(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeErrorMessage(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.characters.Delete(r.Context(), identity(r).UserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := r.ParseMultipartForm(h.maxBodyBytes); err != nil {
		writeError(w, r, bodyError(err, "multipart form with an image field is required"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(imageField)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "image field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, sheeterr.Wrap(err, "failed to read image"))
		return
	}

	img, err := h.characters.UploadImage(r.Context(), identity(r).UserID, contentType(header), data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

func (h *Handler) deleteImage(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" && r.ContentLength != 0 {
		body, err := h.readBody(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		key = gjson.GetBytes(body, "key").String()
	}
	if key == "" {
		writeErrorMessage(w, http.StatusBadRequest, "key is required")
		return
	}

	if err := h.characters.DeleteImage(r.Context(), identity(r).UserID, key); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		return nil, bodyError(err, "failed to read request body")
	}
	return body, nil
}

func bodyError(err error, message string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return sheeterr.InvalidArgumentf("request body exceeds %d bytes", tooLarge.Limit)
	}
	return sheeterr.WrapWithCode(err, sheeterr.CodeInvalidArgument, message)
}

func contentType(header *multipart.FileHeader) string {
	ct := header.Header.Get("Content-Type")
	return strings.TrimSpace(ct)
}
