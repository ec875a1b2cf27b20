package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/modelgraph/pkg/buildinfo"
	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/workspace"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// IDsRequest names a selection of entities.
type IDsRequest struct {
	IDs []string `json:"ids"`
}

// IDsResponse lists tagged identifiers in sorted order.
type IDsResponse struct {
	IDs []string `json:"ids"`
}

// DeleteResponse reports a deletion.
type DeleteResponse struct {
	Removed  []string `json:"removed"`
	Diagrams []string `json:"diagrams"`
}

// DuplicateRequest selects the copy mode.
type DuplicateRequest struct {
	Shallow bool `json:"shallow"`
}

// DuplicateResponse identifies the new diagram.
type DuplicateResponse struct {
	ID    string `json:"id"`
	Model string `json:"model"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok", "version": buildinfo.Version}, http.StatusOK)
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	infos, err := s.runner.Store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, infos, http.StatusOK)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	sum, err := s.runner.Inspect(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, sum, http.StatusOK)
}

func (s *Server) getEntity(w http.ResponseWriter, r *http.Request) {
	id, err := entity.ParseTagged(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	info, err := s.runner.Entity(r.Context(), chi.URLParam(r, "name"), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, info, http.StatusOK)
}

func (s *Server) closure(w http.ResponseWriter, r *http.Request) {
	ids, err := decodeIDs(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	set, err := s.runner.Closure(r.Context(), chi.URLParam(r, "name"), ids)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, IDsResponse{IDs: taggedIDs(set.Sorted())}, http.StatusOK)
}

func (s *Server) deleteEntities(w http.ResponseWriter, r *http.Request) {
	ids, err := decodeIDs(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	del, err := s.runner.Delete(r.Context(), chi.URLParam(r, "name"), ids)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := DeleteResponse{Removed: taggedIDs(del.IDs.Sorted()), Diagrams: []string{}}
	for _, d := range del.Diagrams() {
		resp.Diagrams = append(resp.Diagrams, d.ID().Tagged())
	}
	writeJSON(w, resp, http.StatusOK)
}

func (s *Server) duplicate(w http.ResponseWriter, r *http.Request) {
	id, err := entity.ParseViewID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req DuplicateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
			return
		}
	}
	d, err := s.runner.Duplicate(r.Context(), chi.URLParam(r, "name"), id, req.Shallow)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d.RLock()
	model := d.Model()
	d.RUnlock()
	writeJSON(w, DuplicateResponse{ID: d.ID().String(), Model: model.ID().String()}, http.StatusCreated)
}

var contentTypes = map[string]string{
	workspace.FormatDOT:      "text/vnd.graphviz; charset=utf-8",
	workspace.FormatSVG:      "image/svg+xml",
	workspace.FormatPlantUML: "text/plain; charset=utf-8",
	workspace.FormatNQuads:   "application/n-quads",
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	id, err := entity.ParseViewID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	opts := workspace.ExportOptions{
		Format:   q.Get("format"),
		Detailed: q.Get("detailed") == "true",
		Views:    q.Get("views") == "true",
	}
	if opts.Format == "" {
		opts.Format = workspace.FormatSVG
	}
	out, err := s.runner.Export(r.Context(), chi.URLParam(r, "name"), id, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[opts.Format])
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

func decodeIDs(r *http.Request) ([]entity.ID, error) {
	var req IDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	ids := make([]entity.ID, 0, len(req.IDs))
	for _, s := range req.IDs {
		id, err := entity.ParseTagged(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func taggedIDs(ids []entity.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Tagged()
	}
	return out
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath,
		errors.ErrCodeIdentifierFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeProjectNotFound, errors.ErrCodeFileNotFound,
		errors.ErrCodeUnknownIdentifier:
		return http.StatusNotFound
	case errors.ErrCodeStructure, errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, ErrorResponse{Error: string(code), Message: errors.UserMessage(err)}, status)
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
