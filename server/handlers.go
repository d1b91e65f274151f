package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/katalvlaran/transformlab/derived"
	"github.com/katalvlaran/transformlab/engine"
	"github.com/katalvlaran/transformlab/matrix"
	"github.com/katalvlaran/transformlab/snapshot"
	"github.com/katalvlaran/transformlab/store"
	"github.com/katalvlaran/transformlab/transform"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

// TransformView is one descriptor with its own matrix (factor applied).
type TransformView struct {
	transform.Descriptor
	Matrix matrix.Mat4 `json:"matrix"`
}

// StateView is the body of GET /state and of successful mutations.
type StateView struct {
	Version      uint64          `json:"version"`
	GlobalFactor float64         `json:"globalFactor"`
	Transforms   []TransformView `json:"transforms"`
}

// AddRequest is the body of POST /transforms. Omitted fields take the
// kind's defaults.
type AddRequest struct {
	Kind       transform.Kind `json:"kind"`
	ID         string         `json:"id,omitempty"`
	Name       *string        `json:"name,omitempty"`
	Parameters []float64      `json:"parameters,omitempty"`
	Factor     *float64       `json:"factor,omitempty"`
}

// UpdateRequest is the body of PUT /transforms/{id}.
type UpdateRequest struct {
	Parameters []float64 `json:"parameters,omitempty"`
	Factor     *float64  `json:"factor,omitempty"`
}

// ApplyRequest is the body of POST /apply.
type ApplyRequest struct {
	Points []matrix.Vec3 `json:"points"`
}

// ApplyResponse holds the points mapped through the combined matrix of
// Version.
type ApplyResponse struct {
	Version  uint64        `json:"version"`
	Identity bool          `json:"identity"`
	Points   []matrix.Vec3 `json:"points"`
}

type renameRequest struct {
	Name string `json:"name"`
}

type moveRequest struct {
	Index *int `json:"index"`
}

type orderRequest struct {
	IDs []string `json:"ids"`
}

type factorRequest struct {
	Value *float64 `json:"value"`
}

var errBadRequest = errors.New("invalid request body")

func (s *Server) stateView() StateView {
	st := s.engine.Snapshot()
	v := StateView{
		Version:      st.Version,
		GlobalFactor: st.GlobalFactor,
		Transforms:   make([]TransformView, len(st.Transforms)),
	}
	for i, d := range st.Transforms {
		m, err := d.Matrix()
		if err != nil {
			// committed descriptors always build
			m = matrix.Identity()
		}
		v.Transforms[i] = TransformView{Descriptor: d, Matrix: m}
	}

	return v
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.stateView())
}

func (s *Server) handleDerived(w http.ResponseWriter, r *http.Request) {
	st := s.engine.Derived()
	switch layout := r.URL.Query().Get("layout"); layout {
	case "", "row":
	case "column":
		st = columnLayout(st)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("layout %q: want row or column", layout), engine.ReasonFormat)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// columnLayout transposes every matrix of st for column-vector consumers
// (p' = M·p).
func columnLayout(st derived.State) derived.State {
	st.Combined = matrix.Transpose(st.Combined)
	ms := make([]matrix.Mat4, len(st.Matrices))
	for i, m := range st.Matrices {
		ms[i] = matrix.Transpose(m)
	}
	st.Matrices = ms

	return st
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	st := s.engine.Derived()
	writeJSON(w, http.StatusOK, ApplyResponse{
		Version:  st.Version,
		Identity: st.Combined.IsIdentity(),
		Points:   st.Combined.ApplyAll(req.Points),
	})
}

func (s *Server) handleKinds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"kinds": transform.Catalog()})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var opts []engine.AddOption
	if req.ID != "" {
		opts = append(opts, engine.WithID(req.ID))
	}
	if req.Name != nil {
		opts = append(opts, engine.WithName(*req.Name))
	}
	if req.Parameters != nil {
		opts = append(opts, engine.WithParameters(req.Parameters...))
	}
	if req.Factor != nil {
		opts = append(opts, engine.WithFactor(*req.Factor))
	}

	s.wmu.Lock()
	id, err := s.engine.AddTransform(req.Kind, opts...)
	var view StateView
	if err == nil {
		view = s.stateView()
	}
	s.wmu.Unlock()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "state": view})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	patch := store.Patch{Parameters: req.Parameters, Factor: req.Factor}
	s.mutate(w, func() error { return s.engine.EditTransform(chi.URLParam(r, "id"), patch) })
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, func() error { return s.engine.RemoveTransform(chi.URLParam(r, "id")) })
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.mutate(w, func() error { return s.engine.RenameTransform(chi.URLParam(r, "id"), req.Name) })
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Index == nil {
		writeError(w, http.StatusBadRequest, "index required", engine.ReasonIndex)
		return
	}
	s.mutate(w, func() error { return s.engine.MoveTransform(chi.URLParam(r, "id"), *req.Index) })
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.mutate(w, func() error { return s.engine.ReorderTransforms(req.IDs) })
}

func (s *Server) handleGlobalFactor(w http.ResponseWriter, r *http.Request) {
	var req factorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, "value required", engine.ReasonRange)
		return
	}
	s.mutate(w, func() error { return s.engine.SetGlobalFactor(*req.Value) })
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.mutate(w, func() error {
		s.engine.ResetAll()
		return nil
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	codec, err := requestCodec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), engine.ReasonFormat)
		return
	}
	data, err := snapshot.Marshal(codec, s.engine.Export())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), engine.ReasonOther)
		return
	}
	w.Header().Set("Content-Type", contentType(codec))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	codec, err := requestCodec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), engine.ReasonFormat)
		return
	}
	rec, err := snapshot.Decode(io.LimitReader(r.Body, maxBody), codec)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), engine.ReasonOther)
		return
	}
	s.mutate(w, func() error { return s.engine.Import(rec) })
}

// mutate runs fn and answers the state its commit produced, or the mapped
// error. HTTP writers are serialized so the view cannot include a later
// request's commit.
func (s *Server) mutate(w http.ResponseWriter, fn func() error) {
	s.wmu.Lock()
	err := fn()
	var view StateView
	if err == nil {
		view = s.stateView()
	}
	s.wmu.Unlock()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// requestCodec picks the snapshot codec from ?format=, then Content-Type,
// defaulting to JSON.
func requestCodec(r *http.Request) (snapshot.Codec, error) {
	if f := r.URL.Query().Get("format"); f != "" {
		return snapshot.ParseCodec(f)
	}
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && strings.Contains(mt, "toml") {
		return snapshot.TOML, nil
	}

	return snapshot.JSON, nil
}

func contentType(c snapshot.Codec) string {
	if c == snapshot.TOML {
		return "application/toml"
	}

	return "application/json"
}

// StatusFor maps an engine error to an HTTP status.
func StatusFor(err error) int {
	switch engine.Reason(err) {
	case engine.ReasonNotFound:
		return http.StatusNotFound
	case engine.ReasonDuplicateID:
		return http.StatusConflict
	case engine.ReasonOther:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func writeEngineError(w http.ResponseWriter, err error) {
	writeError(w, StatusFor(err), err.Error(), engine.Reason(err))
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%v: %v", errBadRequest, err), engine.ReasonOther)
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, reason string) {
	writeJSON(w, status, map[string]any{"error": message, "reason": reason})
}
